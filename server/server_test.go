package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/achievement-feed/auth"
	"github.com/jrsteele09/achievement-feed/feed"
	"github.com/jrsteele09/achievement-feed/follows/repofake"
	"github.com/jrsteele09/achievement-feed/internal/config"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/oauthmodel"
	"github.com/jrsteele09/achievement-feed/server"
	"github.com/jrsteele09/achievement-feed/token"
	"github.com/jrsteele09/achievement-feed/upstream"
	"github.com/jrsteele09/achievement-feed/users"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:5173"

type fakeIdentityProvider struct {
	calls    int
	identity *users.LocalIdentity
}

func (f *fakeIdentityProvider) SignIn(context.Context, string, string) (*users.LocalIdentity, error) {
	f.calls++
	return f.identity, nil
}

func (f *fakeIdentityProvider) SignUp(context.Context, string, string) (*users.LocalIdentity, error) {
	f.calls++
	return f.identity, nil
}

type fakeExchanger struct {
	err error
}

func (f *fakeExchanger) Exchange(context.Context) (oauthmodel.UpstreamToken, error) {
	return oauthmodel.UpstreamToken{AccessToken: "T1", ExpiresInSeconds: 86399}, f.err
}

type fakeCharacters struct {
	summary upstream.CharacterSummary
	err     error
	lastCtx oauthmodel.AuthenticatedContext
}

func (f *fakeCharacters) FetchCharacter(_ context.Context, authCtx oauthmodel.AuthenticatedContext, _, _ string) (upstream.CharacterSummary, error) {
	f.lastCtx = authCtx
	return f.summary, f.err
}

type fakeFeed struct {
	entries []feed.Entry
	err     error
}

func (f *fakeFeed) Build(context.Context, oauthmodel.AuthenticatedContext) ([]feed.Entry, error) {
	return f.entries, f.err
}

type fakeHealth struct {
	err error
}

func (f *fakeHealth) Health(context.Context) error {
	return f.err
}

type testFixture struct {
	codec      *token.SessionCodec
	identities *fakeIdentityProvider
	exchanger  *fakeExchanger
	characters *fakeCharacters
	follows    *repofake.FakeFollowRepo
	feed       *fakeFeed
	health     *fakeHealth
	server     *server.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "TEST")
	t.Setenv("CLIENT_ID", "client-id")
	t.Setenv("CLIENT_SECRET", "client-secret")
	t.Setenv("SESSION_SIGNING_SECRET", strings.Repeat("k", token.MinSecretLength))
	t.Setenv("CLIENT_URL", testOrigin+"/")
	cfg, err := config.Parse()
	require.NoError(t, err)

	keyring, err := token.ParseKeyring(cfg.GetSigningSecrets())
	require.NoError(t, err)

	f := &testFixture{
		identities: &fakeIdentityProvider{identity: &users.LocalIdentity{ID: "user-1"}},
		exchanger:  &fakeExchanger{},
		characters: &fakeCharacters{},
		follows:    repofake.NewFakeFollowRepo(),
		feed:       &fakeFeed{},
		health:     &fakeHealth{},
	}
	f.codec, err = token.NewSessionCodec(keyring, token.WithMaxAge(cfg.GetMaxSessionAge()))
	require.NoError(t, err)

	gate, err := auth.NewGate(f.codec)
	require.NoError(t, err)
	sessions, err := auth.NewSessionService(f.identities, f.exchanger, f.codec)
	require.NoError(t, err)

	f.server, err = server.New(cfg, server.Deps{
		Sessions:   sessions,
		Gate:       gate,
		Characters: f.characters,
		Follows:    f.follows,
		Feed:       f.feed,
		Health:     f.health,
	})
	require.NoError(t, err)
	return f
}

func (f *testFixture) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	artifact, err := f.codec.Encode(token.Session{UserID: "user-1", Token: oauthmodel.UpstreamToken{AccessToken: "T1", ExpiresInSeconds: 3600}})
	require.NoError(t, err)
	return &http.Cookie{Name: server.SessionCookieName, Value: artifact}
}

func (f *testFixture) do(t *testing.T, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotEmpty(t, body["error"])
	require.NotEmpty(t, body["error_description"])
	return body
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, "/login", `{"email":"thrall@example.com","password":"Passw0rdOK"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	require.Equal(t, server.SessionCookieName, cookie.Name)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, 3600, cookie.MaxAge)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.False(t, cookie.Secure)

	session, err := f.codec.Decode(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, "T1", session.Token.AccessToken)
	require.Equal(t, "user-1", session.UserID)
}

func TestLogin_SecureCookieBehindTLSProxy(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"identifier":"a@b.c","secret":"Passw0rdOK"}`))
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, rec.Result().Cookies()[0].Secure)
}

func TestLogin_IncompleteCredentials(t *testing.T) {
	f := setupTestFixture(t)

	for _, body := range []string{`{"email":"thrall@example.com"}`, `{"password":"x"}`, `{}`, `not json`} {
		rec := f.do(t, http.MethodPost, "/login", body, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		require.Empty(t, rec.Result().Cookies())
		decodeError(t, rec)
	}
	require.Zero(t, f.identities.calls)
}

func TestLogin_Failures(t *testing.T) {
	t.Run("no identity", func(t *testing.T) {
		f := setupTestFixture(t)
		f.identities.identity = nil

		rec := f.do(t, http.MethodPost, "/login", `{"email":"a@b.c","password":"x"}`, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "authentication_failed", decodeError(t, rec)["error"])
	})

	t.Run("upstream rejected", func(t *testing.T) {
		f := setupTestFixture(t)
		f.exchanger.err = &apperrors.UpstreamRejectedError{Upstream: "token", StatusCode: http.StatusUnauthorized}

		rec := f.do(t, http.MethodPost, "/signup", `{"email":"a@b.c","password":"x"}`, nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("upstream unreachable", func(t *testing.T) {
		f := setupTestFixture(t)
		f.exchanger.err = &apperrors.TransientUpstreamError{Upstream: "token", Err: errors.New("dial tcp: refused")}

		rec := f.do(t, http.MethodPost, "/login", `{"email":"a@b.c","password":"x"}`, nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.NotContains(t, rec.Body.String(), "dial tcp")
	})
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/logout", "", f.sessionCookie(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, testOrigin, rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, server.SessionCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Less(t, cookies[0].MaxAge, 0)
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	f := setupTestFixture(t)

	routes := []struct{ method, target string }{
		{http.MethodGet, "/character/achievement"},
		{http.MethodGet, "/search?realmSlug=area-52&characterName=thrall"},
		{http.MethodPost, "/follow"},
		{http.MethodPost, "/unfollow"},
	}
	invalid := &http.Cookie{Name: server.SessionCookieName, Value: "tampered"}

	for _, route := range routes {
		for _, cookie := range []*http.Cookie{nil, invalid} {
			rec := f.do(t, route.method, route.target, "", cookie)
			require.Equal(t, http.StatusUnauthorized, rec.Code, route.target)
			require.Equal(t, "unauthenticated", decodeError(t, rec)["error"])
		}
	}
}

func TestSearch(t *testing.T) {
	f := setupTestFixture(t)
	f.characters.summary = upstream.CharacterSummary{Name: "Thrall", Faction: "Horde", Race: "Orc", Class: "Shaman", AchievementPoints: 10, RealmSlug: "area-52"}

	rec := f.do(t, http.MethodGet, "/search?realmSlug=area-52&characterName=thrall", "", f.sessionCookie(t))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"name":"Thrall","faction":"Horde","race":"Orc","class":"Shaman","achievementPoints":10,"realmSlug":"area-52"}`, rec.Body.String())
	require.Equal(t, oauthmodel.AuthenticatedContext{AccessToken: "T1", UserID: "user-1"}, f.characters.lastCtx)
}

func TestSearch_Errors(t *testing.T) {
	cases := map[string]struct {
		target string
		err    error
		status int
	}{
		"missing params":    {"/search?realmSlug=area-52", nil, http.StatusBadRequest},
		"unknown character": {"/search?realmSlug=area-52&characterName=nobody", &apperrors.UpstreamRejectedError{Upstream: "profile", StatusCode: 404}, http.StatusNotFound},
		"upstream 500":      {"/search?realmSlug=area-52&characterName=thrall", &apperrors.UpstreamRejectedError{Upstream: "profile", StatusCode: 500}, http.StatusBadGateway},
		"unreachable":       {"/search?realmSlug=area-52&characterName=thrall", &apperrors.TransientUpstreamError{Upstream: "profile", Err: errors.New("timeout")}, http.StatusBadGateway},
		"unexpected":        {"/search?realmSlug=area-52&characterName=thrall", errors.New("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.characters.err = tc.err

			rec := f.do(t, http.MethodGet, tc.target, "", f.sessionCookie(t))
			require.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			require.NotContains(t, body["error_description"], "boom")
		})
	}
}

func TestFollowAndUnfollow(t *testing.T) {
	f := setupTestFixture(t)
	cookie := f.sessionCookie(t)

	body := `{"characterName":"Thrall","characterFaction":"Horde","characterRace":"Orc","characterClass":"Shaman","characterAchievementPoints":"12345","characterRealmSlug":"area-52"}`
	rec := f.do(t, http.MethodPost, "/follow", body, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success   bool `json:"success"`
		Character struct {
			ID                int64  `json:"id"`
			Name              string `json:"name"`
			AchievementPoints int64  `json:"achievement_points"`
			RealmSlug         string `json:"realm_slug"`
		} `json:"character"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.Success)
	require.NotZero(t, resp.Character.ID)
	require.EqualValues(t, 12345, resp.Character.AchievementPoints)

	followed, err := f.follows.ListFollowed(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, followed, 1)

	rec = f.do(t, http.MethodPost, "/unfollow", `{"characterName":"Thrall","characterRealmSlug":"area-52"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/unfollow", `{"characterName":"Thrall","characterRealmSlug":"area-52"}`, cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/unfollow", `{"characterName":"Thrall"}`, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFollow_IncompleteCharacter(t *testing.T) {
	f := setupTestFixture(t)
	cookie := f.sessionCookie(t)

	for _, body := range []string{
		`{"characterName":"Thrall"}`,
		`{"characterName":"Thrall","characterFaction":"Horde","characterRace":"Orc","characterClass":"Shaman","characterRealmSlug":"area-52"}`,
		`{"characterName":"Thrall","characterFaction":"Horde","characterRace":"Orc","characterClass":"Shaman","characterAchievementPoints":"many","characterRealmSlug":"area-52"}`,
	} {
		rec := f.do(t, http.MethodPost, "/follow", body, cookie)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	require.Zero(t, f.follows.CharacterCount())
}

func TestAchievementFeed(t *testing.T) {
	f := setupTestFixture(t)
	f.feed.entries = []feed.Entry{{ID: 6, Name: "Level 10", CompletedTimestamp: 1700000000000}}

	rec := f.do(t, http.MethodGet, "/character/achievement", "", f.sessionCookie(t))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(t, entries, 1)
	require.Equal(t, "Level 10", entries[0]["name"])
	require.Contains(t, entries[0], "completed_timestamp")
	require.Contains(t, entries[0], "character")
}

func TestAchievementFeed_UpstreamFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.feed.err = &apperrors.UpstreamRejectedError{Upstream: "profile", StatusCode: 503}

	rec := f.do(t, http.MethodGet, "/character/achievement", "", f.sessionCookie(t))
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthAndPing(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	f.health.err = errors.New("database is locked")
	rec = f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, rec.Body.String(), "locked")

	rec = f.do(t, http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ping":true}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCors(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t)
	f.server.RegisterRouteFunc("GET /panic", func(http.ResponseWriter, *http.Request) {
		panic("secret detail")
	})

	rec := f.do(t, http.MethodGet, "/panic", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret detail")
	require.Equal(t, "server_error", decodeError(t, rec)["error"])
}

func TestNew_RequiresDeps(t *testing.T) {
	setupTestFixture(t)

	cfg, err := config.Parse()
	require.NoError(t, err)
	_, err = server.New(cfg, server.Deps{})
	require.Error(t, err)

	_, err = server.New(nil, server.Deps{})
	require.Error(t, err)
}
