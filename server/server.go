package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/achievement-feed/auth"
	"github.com/jrsteele09/achievement-feed/feed"
	"github.com/jrsteele09/achievement-feed/follows"
	"github.com/jrsteele09/achievement-feed/internal/config"
	"github.com/jrsteele09/achievement-feed/oauthmodel"
	"github.com/jrsteele09/achievement-feed/upstream"
	"github.com/rs/zerolog/log"
)

// SessionStarter runs the login and signup flows.
type SessionStarter interface {
	Login(ctx context.Context, creds auth.Credentials) (string, error)
	Signup(ctx context.Context, creds auth.Credentials) (string, error)
}

// Authenticator validates a presented session artifact.
type Authenticator interface {
	Authenticate(presented string) (oauthmodel.AuthenticatedContext, error)
}

// CharacterLookup reads character profiles from the upstream API.
type CharacterLookup interface {
	FetchCharacter(ctx context.Context, authCtx oauthmodel.AuthenticatedContext, realmSlug, characterName string) (upstream.CharacterSummary, error)
}

// FeedBuilder assembles the recent achievement feed for a user.
type FeedBuilder interface {
	Build(ctx context.Context, authCtx oauthmodel.AuthenticatedContext) ([]feed.Entry, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps holds the collaborators the HTTP handlers call into.
type Deps struct {
	Sessions   SessionStarter
	Gate       Authenticator
	Characters CharacterLookup
	Follows    follows.Repo
	Feed       FeedBuilder
	Health     HealthChecker
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config
	deps    Deps
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[Server New] config is required")
	}
	switch {
	case deps.Sessions == nil:
		return nil, fmt.Errorf("[Server New] session service is required")
	case deps.Gate == nil:
		return nil, fmt.Errorf("[Server New] auth gate is required")
	case deps.Characters == nil:
		return nil, fmt.Errorf("[Server New] character lookup is required")
	case deps.Follows == nil:
		return nil, fmt.Errorf("[Server New] follow repo is required")
	case deps.Feed == nil:
		return nil, fmt.Errorf("[Server New] feed builder is required")
	case deps.Health == nil:
		return nil, fmt.Errorf("[Server New] health checker is required")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		deps:   deps,
	}

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.GlobalMiddleware()...)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
