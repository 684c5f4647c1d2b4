package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/internal/metrics"
	"github.com/jrsteele09/achievement-feed/oauthmodel"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

const (
	DefaultAPIURL    = "https://us.api.blizzard.com"
	DefaultNamespace = "profile-us"
	DefaultLocale    = "en_US"

	maxProfileBody = 4 << 20
)

// CharacterSummary is a character profile mapped to the fields this service stores.
type CharacterSummary struct {
	Name              string `json:"name"`
	Faction           string `json:"faction"`
	Race              string `json:"race"`
	Class             string `json:"class"`
	AchievementPoints int64  `json:"achievementPoints"`
	RealmSlug         string `json:"realmSlug"`
}

// RecentAchievement is one entry of a character's recently completed achievements.
type RecentAchievement struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// CompletedTimestamp is milliseconds since the Unix epoch.
	CompletedTimestamp int64 `json:"completed_timestamp"`
}

type AchievementSummary struct {
	TotalPoints int64               `json:"total_points"`
	Recent      []RecentAchievement `json:"recent"`
}

// CharacterClient reads character data from the upstream profile API using the access
// token carried by the caller's session.
type CharacterClient struct {
	apiURL     string
	namespace  string
	locale     string
	httpClient *http.Client
}

type CharacterClientOption func(*CharacterClient)

func WithNamespace(namespace string) CharacterClientOption {
	return func(c *CharacterClient) {
		c.namespace = namespace
	}
}

func WithLocale(locale string) CharacterClientOption {
	return func(c *CharacterClient) {
		c.locale = locale
	}
}

// WithProfileHTTPClient sets the base HTTP client the bearer transport wraps.
func WithProfileHTTPClient(httpClient *http.Client) CharacterClientOption {
	return func(c *CharacterClient) {
		c.httpClient = httpClient
	}
}

func NewCharacterClient(apiURL string, opts ...CharacterClientOption) (*CharacterClient, error) {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, errors.Wrapf(apperrors.ErrConfiguration, "[NewCharacterClient] invalid api url: %v", err)
	}

	c := &CharacterClient{
		apiURL:    strings.TrimSuffix(apiURL, "/"),
		namespace: DefaultNamespace,
		locale:    DefaultLocale,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchCharacter returns the profile of characterName on realmSlug.
func (c *CharacterClient) FetchCharacter(ctx context.Context, authCtx oauthmodel.AuthenticatedContext, realmSlug, characterName string) (CharacterSummary, error) {
	if err := validateLookup(realmSlug, characterName); err != nil {
		return CharacterSummary{}, err
	}

	body, status, err := c.get(ctx, authCtx, c.characterPath(realmSlug, characterName))
	if err != nil {
		return CharacterSummary{}, err
	}

	name := gjson.GetBytes(body, "name")
	if !name.Exists() {
		return CharacterSummary{}, &apperrors.UpstreamRejectedError{Upstream: upstreamProfile, StatusCode: status}
	}

	return CharacterSummary{
		Name:              name.String(),
		Faction:           gjson.GetBytes(body, "faction.name").String(),
		Race:              gjson.GetBytes(body, "race.name").String(),
		Class:             gjson.GetBytes(body, "character_class.name").String(),
		AchievementPoints: gjson.GetBytes(body, "achievement_points").Int(),
		RealmSlug:         gjson.GetBytes(body, "realm.slug").String(),
	}, nil
}

// FetchAchievements returns the achievement totals and recent completions of a character.
func (c *CharacterClient) FetchAchievements(ctx context.Context, authCtx oauthmodel.AuthenticatedContext, realmSlug, characterName string) (AchievementSummary, error) {
	if err := validateLookup(realmSlug, characterName); err != nil {
		return AchievementSummary{}, err
	}

	body, _, err := c.get(ctx, authCtx, c.characterPath(realmSlug, characterName)+"/achievements")
	if err != nil {
		return AchievementSummary{}, err
	}

	summary := AchievementSummary{
		TotalPoints: gjson.GetBytes(body, "total_points").Int(),
	}
	gjson.GetBytes(body, "recent_events").ForEach(func(_, event gjson.Result) bool {
		summary.Recent = append(summary.Recent, RecentAchievement{
			ID:                 event.Get("achievement.id").Int(),
			Name:               event.Get("achievement.name").String(),
			CompletedTimestamp: event.Get("timestamp").Int(),
		})
		return true
	})
	return summary, nil
}

func validateLookup(realmSlug, characterName string) error {
	if strings.TrimSpace(realmSlug) == "" || strings.TrimSpace(characterName) == "" {
		return errors.Wrap(apperrors.ErrInvalidRequest, "realm slug and character name are required")
	}
	return nil
}

func (c *CharacterClient) characterPath(realmSlug, characterName string) string {
	return fmt.Sprintf("/profile/wow/character/%s/%s",
		url.PathEscape(strings.ToLower(strings.TrimSpace(realmSlug))),
		url.PathEscape(strings.ToLower(strings.TrimSpace(characterName))),
	)
}

func (c *CharacterClient) get(ctx context.Context, authCtx oauthmodel.AuthenticatedContext, path string) ([]byte, int, error) {
	if authCtx.AccessToken == "" {
		return nil, 0, errors.Wrap(apperrors.ErrUnauthenticated, "[CharacterClient.get] access token is required")
	}

	query := url.Values{}
	query.Set("namespace", c.namespace)
	query.Set("locale", c.locale)
	endpoint := c.apiURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, errors.Wrapf(apperrors.ErrInvalidRequest, "[CharacterClient.get] %v", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: authCtx.AccessToken,
		TokenType:   "Bearer",
	}))

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		metrics.ObserveUpstream(upstreamProfile, metrics.OutcomeTransient, start)
		return nil, 0, &apperrors.TransientUpstreamError{Upstream: upstreamProfile, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveUpstream(upstreamProfile, metrics.OutcomeRejected, start)
		return nil, resp.StatusCode, &apperrors.UpstreamRejectedError{Upstream: upstreamProfile, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBody))
	if err != nil {
		metrics.ObserveUpstream(upstreamProfile, metrics.OutcomeTransient, start)
		return nil, resp.StatusCode, &apperrors.TransientUpstreamError{Upstream: upstreamProfile, Err: err}
	}
	if !gjson.ValidBytes(body) {
		metrics.ObserveUpstream(upstreamProfile, metrics.OutcomeRejected, start)
		return nil, resp.StatusCode, &apperrors.UpstreamRejectedError{Upstream: upstreamProfile, StatusCode: resp.StatusCode}
	}

	metrics.ObserveUpstream(upstreamProfile, metrics.OutcomeSuccess, start)
	return body, resp.StatusCode, nil
}
