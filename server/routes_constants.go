package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Session routes
	RouteLogin  = "/login"
	RouteSignup = "/signup"
	RouteLogout = "/logout"

	// Character routes
	RouteCharacterAchievement = "/character/achievement"
	RouteSearch               = "/search"
	RouteFollow               = "/follow"
	RouteUnfollow             = "/unfollow"

	// Operational routes
	RouteHealth  = "/health"
	RoutePing    = "/ping"
	RouteMetrics = "/metrics"
)
