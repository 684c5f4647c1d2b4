package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// SESSION
	s.RegisterRouteFunc("POST "+RouteLogin, s.LoginHandler())
	s.RegisterRouteFunc("POST "+RouteSignup, s.SignupHandler())
	s.RegisterRouteFunc("GET "+RouteLogout, s.LogoutHandler())

	// Character routes (require a session cookie)
	s.RegisterRouteHandler("GET "+RouteCharacterAchievement, ChainMiddleware(s.AchievementFeedHandler(), s.RequireSession))
	s.RegisterRouteHandler("GET "+RouteSearch, ChainMiddleware(s.SearchHandler(), s.RequireSession))
	s.RegisterRouteHandler("POST "+RouteFollow, ChainMiddleware(s.FollowHandler(), s.RequireSession))
	s.RegisterRouteHandler("POST "+RouteUnfollow, ChainMiddleware(s.UnfollowHandler(), s.RequireSession))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteFunc("GET "+RoutePing, s.PingHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}
