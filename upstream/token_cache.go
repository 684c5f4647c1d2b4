package upstream

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/oauthmodel"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCacheKey    = "achievement-feed:upstream-token"
	DefaultCacheMargin = time.Minute
)

// CachedExchanger keeps the upstream token in Redis until shortly before it expires.
// Redis failures are logged and fall through to a fresh exchange.
type CachedExchanger struct {
	next    Exchanger
	client  redis.UniversalClient
	key     string
	margin  time.Duration
	nowFunc func() time.Time
}

type cachedToken struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

type CacheOption func(*CachedExchanger)

func WithCacheKey(key string) CacheOption {
	return func(c *CachedExchanger) {
		c.key = key
	}
}

// WithCacheMargin sets how long before upstream expiry a cached token stops being served.
func WithCacheMargin(margin time.Duration) CacheOption {
	return func(c *CachedExchanger) {
		c.margin = margin
	}
}

func WithCacheNowFunc(now func() time.Time) CacheOption {
	return func(c *CachedExchanger) {
		c.nowFunc = now
	}
}

func NewCachedExchanger(next Exchanger, client redis.UniversalClient, opts ...CacheOption) (*CachedExchanger, error) {
	if next == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewCachedExchanger] exchanger is required")
	}
	if client == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewCachedExchanger] redis client is required")
	}

	c := &CachedExchanger{
		next:    next,
		client:  client,
		key:     DefaultCacheKey,
		margin:  DefaultCacheMargin,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewRedisClient connects to the Redis instance named by a redis:// URL.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrConfiguration, "[NewRedisClient] invalid REDIS_URL: %v", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "[NewRedisClient] ping failed")
	}
	return client, nil
}

func (c *CachedExchanger) Exchange(ctx context.Context) (oauthmodel.UpstreamToken, error) {
	if tok, ok := c.lookup(ctx); ok {
		return tok, nil
	}

	tok, err := c.next.Exchange(ctx)
	if err != nil {
		return oauthmodel.UpstreamToken{}, err
	}

	c.store(ctx, tok)
	return tok, nil
}

func (c *CachedExchanger) lookup(ctx context.Context) (oauthmodel.UpstreamToken, bool) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("upstream token cache read failed")
		}
		return oauthmodel.UpstreamToken{}, false
	}

	var cached cachedToken
	if err := json.Unmarshal(data, &cached); err != nil {
		log.Warn().Err(err).Msg("upstream token cache entry is corrupt")
		return oauthmodel.UpstreamToken{}, false
	}

	remaining := cached.ExpiresAt - c.nowFunc().Unix()
	if cached.AccessToken == "" || remaining <= int64(c.margin.Seconds()) {
		return oauthmodel.UpstreamToken{}, false
	}

	return oauthmodel.UpstreamToken{AccessToken: cached.AccessToken, ExpiresInSeconds: remaining}, true
}

func (c *CachedExchanger) store(ctx context.Context, tok oauthmodel.UpstreamToken) {
	ttl := tok.Lifetime() - c.margin
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(cachedToken{
		AccessToken: tok.AccessToken,
		ExpiresAt:   c.nowFunc().Add(tok.Lifetime()).Unix(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("upstream token cache encode failed")
		return
	}

	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("upstream token cache write failed")
	}
}
