package upstream

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/internal/metrics"
	"github.com/jrsteele09/achievement-feed/oauthmodel"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL is the Battle.net client-credentials endpoint.
const DefaultTokenURL = "https://oauth.battle.net/token"

const (
	upstreamToken   = "token"
	upstreamProfile = "profile"
)

// Exchanger obtains an upstream access token for this service.
type Exchanger interface {
	Exchange(ctx context.Context) (oauthmodel.UpstreamToken, error)
}

// TokenClient performs the client-credentials grant against the upstream token endpoint.
// Every call to Exchange performs a fresh exchange.
type TokenClient struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	nowFunc      func() time.Time
}

type TokenClientOption func(*TokenClient)

// WithTokenURL overrides DefaultTokenURL.
func WithTokenURL(tokenURL string) TokenClientOption {
	return func(c *TokenClient) {
		c.tokenURL = tokenURL
	}
}

// WithTokenHTTPClient sets the HTTP client used for the token request.
func WithTokenHTTPClient(httpClient *http.Client) TokenClientOption {
	return func(c *TokenClient) {
		c.httpClient = httpClient
	}
}

// WithTokenNowFunc sets the clock used when only an absolute expiry is known.
func WithTokenNowFunc(now func() time.Time) TokenClientOption {
	return func(c *TokenClient) {
		c.nowFunc = now
	}
}

func NewTokenClient(clientID, clientSecret string, opts ...TokenClientOption) (*TokenClient, error) {
	if clientID == "" {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewTokenClient] client id is required")
	}
	if clientSecret == "" {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewTokenClient] client secret is required")
	}

	c := &TokenClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     DefaultTokenURL,
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokenURL == "" {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewTokenClient] token url is required")
	}
	return c, nil
}

// Exchange requests a new access token. Network failures are TransientUpstreamError and any
// response without a usable token is UpstreamRejectedError.
func (c *TokenClient) Exchange(ctx context.Context) (oauthmodel.UpstreamToken, error) {
	cfg := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	start := time.Now()
	tok, err := cfg.Token(ctx)
	if err != nil {
		mapped := classifyTokenError(err)
		metrics.ObserveUpstream(upstreamToken, outcomeFor(mapped), start)
		return oauthmodel.UpstreamToken{}, mapped
	}
	metrics.ObserveUpstream(upstreamToken, metrics.OutcomeSuccess, start)

	return oauthmodel.UpstreamToken{
		AccessToken:      tok.AccessToken,
		ExpiresInSeconds: c.expiresIn(tok),
	}, nil
}

// expiresIn reports the lifetime the upstream sent. Expiry is only consulted when the raw
// expires_in field is missing, since oauth2 stamps it before the response is returned.
func (c *TokenClient) expiresIn(tok *oauth2.Token) int64 {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}

	if tok.ExpiresIn > 0 {
		return tok.ExpiresIn
	}
	if tok.Expiry.IsZero() {
		return 0
	}
	return int64(math.Round(tok.Expiry.Sub(c.nowFunc()).Seconds()))
}

func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &apperrors.UpstreamRejectedError{Upstream: upstreamToken, StatusCode: status}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &apperrors.TransientUpstreamError{Upstream: upstreamToken, Err: err}
	}

	// The oauth2 package only returns other errors after a 2xx without a usable token.
	return &apperrors.UpstreamRejectedError{Upstream: upstreamToken, StatusCode: http.StatusOK}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, apperrors.ErrTransientUpstream):
		return metrics.OutcomeTransient
	case errors.Is(err, apperrors.ErrUpstreamRejected):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}
