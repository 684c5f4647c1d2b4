package sqlrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/jrsteele09/achievement-feed/internal/database"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/users"
	"github.com/pkg/errors"
)

var _ users.UserRepo = (*UserRepo)(nil)

// UserRepo stores accounts in the users table.
type UserRepo struct {
	db *database.DB
}

func NewUserRepo(db *database.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *users.User) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (id, email, password_hash, date_joined, last_login)
		VALUES (?, ?, ?, ?, ?)`),
		user.ID, user.Email, user.PasswordHash, user.DateJoined.UTC(), nullTime(user.LastLogin),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		return errors.Wrap(err, "[UserRepo.Create]")
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *UserRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`), at.UTC(), id)
	if err != nil {
		return errors.Wrap(err, "[UserRepo.SetLastLogin]")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// column is always one of the fixed names above.
func (r *UserRepo) getOne(ctx context.Context, column, value string) (*users.User, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, email, password_hash, date_joined, last_login
		FROM users WHERE `+column+` = ?`), value)

	var (
		user      users.User
		lastLogin sql.NullTime
	)
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DateJoined, &lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, errors.Wrap(err, "[UserRepo.getOne]")
	}
	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}
	return &user, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
