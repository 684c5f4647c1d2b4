package server

import (
	"net/http"

	"github.com/jrsteele09/achievement-feed/auth"
	"github.com/rs/zerolog/hlog"
)

// RequireSession admits requests carrying a valid session cookie and stores the authenticated
// context on the request. Missing and invalid sessions get the same 401.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authCtx, err := s.deps.Gate.Authenticate(sessionFromRequest(r))
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("session rejected")
			writeJSONError(w, errorCodeUnauthenticated, "authentication required", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(auth.WithAuthenticatedContext(r.Context(), authCtx)))
	}
}
