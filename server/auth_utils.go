package server

import (
	"net/http"
)

// SessionCookieName is the cookie carrying the signed session artifact.
const SessionCookieName = "jwt"

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, artifact string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    artifact,
		Path:     "/",
		Domain:   s.config.GetCookieDomain(),
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetMaxSessionAge().Seconds()),
	})
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.config.GetCookieDomain(),
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func sessionFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
