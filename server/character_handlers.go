package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/achievement-feed/auth"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/pkg/errors"
)

// AchievementFeedHandler returns the recent achievements of every character the caller follows.
func (s *Server) AchievementFeedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authCtx, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, r, apperrors.ErrUnauthenticated)
			return
		}

		entries, err := s.deps.Feed.Build(r.Context(), authCtx)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// SearchHandler looks up one character profile by realm and name.
func (s *Server) SearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authCtx, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, r, apperrors.ErrUnauthenticated)
			return
		}

		realmSlug := strings.TrimSpace(r.URL.Query().Get("realmSlug"))
		characterName := strings.TrimSpace(r.URL.Query().Get("characterName"))
		if realmSlug == "" || characterName == "" {
			writeError(w, r, errors.Wrap(apperrors.ErrInvalidRequest, "realmSlug and characterName are required"))
			return
		}

		character, err := s.deps.Characters.FetchCharacter(r.Context(), authCtx, realmSlug, characterName)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, character)
	}
}
