package sqlrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/jrsteele09/achievement-feed/follows"
	"github.com/jrsteele09/achievement-feed/internal/database"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/pkg/errors"
)

var _ follows.Repo = (*FollowRepo)(nil)

// Both SQLite and Postgres accept this upsert, so concurrent follows of the same character
// never create a second record.
const upsertCharacterSQL = `
	INSERT INTO characters (name, name_key, faction, race, class, achievement_points, realm_slug, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (name_key, realm_slug) DO UPDATE SET
		name = excluded.name,
		faction = excluded.faction,
		race = excluded.race,
		class = excluded.class,
		achievement_points = excluded.achievement_points,
		updated_at = excluded.updated_at
	RETURNING id`

type FollowRepo struct {
	db      *database.DB
	nowFunc func() time.Time
}

type FollowRepoOption func(*FollowRepo)

func WithNowFunc(now func() time.Time) FollowRepoOption {
	return func(r *FollowRepo) {
		r.nowFunc = now
	}
}

func NewFollowRepo(db *database.DB, opts ...FollowRepoOption) *FollowRepo {
	r := &FollowRepo{db: db, nowFunc: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *FollowRepo) UpsertCharacter(ctx context.Context, character follows.Character) (follows.Character, error) {
	if err := character.Validate(); err != nil {
		return follows.Character{}, err
	}
	return r.upsert(ctx, r.db, character)
}

func (r *FollowRepo) upsert(ctx context.Context, q queryer, character follows.Character) (follows.Character, error) {
	err := q.QueryRowContext(ctx, r.db.Rebind(upsertCharacterSQL),
		character.Name, follows.NameKey(character.Name), character.Faction, character.Race, character.Class,
		character.AchievementPoints, character.RealmSlug, r.nowFunc().UTC(),
	).Scan(&character.ID)
	if err != nil {
		return follows.Character{}, errors.Wrap(err, "[FollowRepo.upsert]")
	}
	return character, nil
}

func (r *FollowRepo) Follow(ctx context.Context, userID string, character follows.Character) (follows.Character, error) {
	if err := character.Validate(); err != nil {
		return follows.Character{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return follows.Character{}, errors.Wrap(err, "[FollowRepo.Follow] begin")
	}
	defer database.Rollback(tx)

	stored, err := r.upsert(ctx, tx, character)
	if err != nil {
		return follows.Character{}, err
	}

	_, err = tx.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO follows (user_id, character_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, character_id) DO NOTHING`),
		userID, stored.ID, r.nowFunc().UTC(),
	)
	if err != nil {
		return follows.Character{}, errors.Wrap(err, "[FollowRepo.Follow] insert relation")
	}

	if err := tx.Commit(); err != nil {
		return follows.Character{}, errors.Wrap(err, "[FollowRepo.Follow] commit")
	}
	return stored, nil
}

func (r *FollowRepo) Unfollow(ctx context.Context, userID, realmSlug, name string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM follows
		WHERE user_id = ?
		  AND character_id IN (SELECT id FROM characters WHERE name_key = ? AND realm_slug = ?)`),
		userID, follows.NameKey(name), realmSlug,
	)
	if err != nil {
		return errors.Wrap(err, "[FollowRepo.Unfollow]")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[FollowRepo.Unfollow] rows affected")
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *FollowRepo) ListFollowed(ctx context.Context, userID string) ([]follows.Character, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT c.id, c.name, c.faction, c.race, c.class, c.achievement_points, c.realm_slug
		FROM characters c
		JOIN follows f ON f.character_id = c.id
		WHERE f.user_id = ?
		ORDER BY c.name, c.realm_slug`), userID)
	if err != nil {
		return nil, errors.Wrap(err, "[FollowRepo.ListFollowed]")
	}
	defer rows.Close()

	followed := []follows.Character{}
	for rows.Next() {
		var c follows.Character
		if err := rows.Scan(&c.ID, &c.Name, &c.Faction, &c.Race, &c.Class, &c.AchievementPoints, &c.RealmSlug); err != nil {
			return nil, errors.Wrap(err, "[FollowRepo.ListFollowed] scan")
		}
		followed = append(followed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "[FollowRepo.ListFollowed] rows")
	}
	return followed, nil
}
