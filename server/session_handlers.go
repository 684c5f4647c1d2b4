package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/achievement-feed/auth"
)

// credentialsRequest accepts both the identifier/secret and the email/password spellings.
type credentialsRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Secret     string `json:"secret"`
	Password   string `json:"password"`
}

func (c credentialsRequest) credentials() auth.Credentials {
	creds := auth.Credentials{Identifier: c.Identifier, Secret: c.Secret}
	if creds.Identifier == "" {
		creds.Identifier = c.Email
	}
	if creds.Secret == "" {
		creds.Secret = c.Password
	}
	return creds
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return s.sessionHandler(s.deps.Sessions.Login)
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return s.sessionHandler(s.deps.Sessions.Signup)
}

func (s *Server) sessionHandler(establish func(ctx context.Context, creds auth.Credentials) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		artifact, err := establish(r.Context(), req.credentials())
		if err != nil {
			writeError(w, r, err)
			return
		}

		s.SetSessionCookie(w, r, artifact)
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// LogoutHandler drops the session cookie and sends the browser back to the client app.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ClearSessionCookie(w, r)
		http.Redirect(w, r, s.config.GetLogoutRedirectURL(), http.StatusSeeOther)
	}
}
