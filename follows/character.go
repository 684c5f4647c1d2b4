package follows

import (
	"strings"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/pkg/errors"
)

// Character is a stored character record. Records are unique per (Name, RealmSlug), are
// refreshed on every follow and are never deleted.
type Character struct {
	ID                int64  `json:"id,omitempty"`
	Name              string `json:"name"`
	Faction           string `json:"faction"`
	Race              string `json:"race"`
	Class             string `json:"class"`
	AchievementPoints int64  `json:"achievement_points"`
	RealmSlug         string `json:"realm_slug"`
}

// NameKey is the case-insensitive form a character name is matched by. Upstream character
// names are not case sensitive, so "Thrall" and "thrall" are the same character.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate requires every descriptive field.
func (c Character) Validate() error {
	fields := []struct{ name, value string }{
		{"name", c.Name},
		{"faction", c.Faction},
		{"race", c.Race},
		{"class", c.Class},
		{"realmSlug", c.RealmSlug},
	}

	missing := []string{}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(apperrors.ErrInvalidRequest, "missing character fields %v", missing)
	}
	if c.AchievementPoints < 0 {
		return errors.Wrap(apperrors.ErrInvalidRequest, "achievement points must not be negative")
	}
	return nil
}
