package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/achievement-feed/auth"
	"github.com/jrsteele09/achievement-feed/follows"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/pkg/errors"
)

type followRequest struct {
	CharacterName              string   `json:"characterName"`
	CharacterFaction           string   `json:"characterFaction"`
	CharacterRace              string   `json:"characterRace"`
	CharacterClass             string   `json:"characterClass"`
	CharacterAchievementPoints *flexInt `json:"characterAchievementPoints"`
	CharacterRealmSlug         string   `json:"characterRealmSlug"`
}

func (f followRequest) character() (follows.Character, error) {
	if f.CharacterAchievementPoints == nil {
		return follows.Character{}, errors.Wrap(apperrors.ErrInvalidRequest, "characterAchievementPoints is required")
	}

	c := follows.Character{
		Name:              strings.TrimSpace(f.CharacterName),
		Faction:           strings.TrimSpace(f.CharacterFaction),
		Race:              strings.TrimSpace(f.CharacterRace),
		Class:             strings.TrimSpace(f.CharacterClass),
		AchievementPoints: int64(*f.CharacterAchievementPoints),
		RealmSlug:         strings.ToLower(strings.TrimSpace(f.CharacterRealmSlug)),
	}
	return c, c.Validate()
}

type followResponse struct {
	Success   bool              `json:"success"`
	Character follows.Character `json:"character"`
}

type unfollowRequest struct {
	CharacterName      string `json:"characterName"`
	CharacterRealmSlug string `json:"characterRealmSlug"`
}

// FollowHandler records the character and that the caller follows it.
func (s *Server) FollowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authCtx, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, r, apperrors.ErrUnauthenticated)
			return
		}

		var req followRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		character, err := req.character()
		if err != nil {
			writeError(w, r, err)
			return
		}

		stored, err := s.deps.Follows.Follow(r.Context(), authCtx.UserID, character)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, followResponse{Success: true, Character: stored})
	}
}

// UnfollowHandler removes the caller's follow relation. The character record is kept.
func (s *Server) UnfollowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authCtx, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, r, apperrors.ErrUnauthenticated)
			return
		}

		var req unfollowRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		name := strings.TrimSpace(req.CharacterName)
		realmSlug := strings.ToLower(strings.TrimSpace(req.CharacterRealmSlug))
		if name == "" || realmSlug == "" {
			writeError(w, r, errors.Wrap(apperrors.ErrInvalidRequest, "characterName and characterRealmSlug are required"))
			return
		}

		if err := s.deps.Follows.Unfollow(r.Context(), authCtx.UserID, realmSlug, name); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
