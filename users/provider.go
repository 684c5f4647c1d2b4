package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LocalIdentity is the account a set of credentials resolved to.
type LocalIdentity struct {
	ID string
}

// Provider verifies and registers credentials against the local account store.
type Provider struct {
	repo    UserRepo
	nowFunc func() time.Time
}

type ProviderOption func(*Provider)

func WithNowFunc(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.nowFunc = now
	}
}

func NewProvider(repo UserRepo, opts ...ProviderOption) (*Provider, error) {
	if repo == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewProvider] user repo is required")
	}

	p := &Provider{
		repo:    repo,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// compareAgainstDummy spends the same bcrypt work as a real comparison so the response time
// of an unknown email matches that of a wrong password.
func compareAgainstDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = HashPassword("achievement-feed-dummy-password")
	})
	CheckPasswordHash(password, dummyHash)
}

// SignIn returns the identity owning email when password matches, or nil when it does not.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*LocalIdentity, error) {
	user, err := p.repo.GetByEmail(ctx, NormaliseEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			compareAgainstDummy(password)
			return nil, nil
		}
		return nil, errors.Wrap(err, "[Provider.SignIn] failed to look up user")
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil
	}

	if err := p.repo.SetLastLogin(ctx, user.ID, p.nowFunc()); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}
	return &LocalIdentity{ID: user.ID}, nil
}

// SignUp registers a new account. It returns nil when the email is already registered.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*LocalIdentity, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Provider.SignUp] %v", err)
	}

	email = NormaliseEmail(email)
	if _, err := p.repo.GetByEmail(ctx, email); err == nil {
		return nil, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(err, "[Provider.SignUp] failed to look up user")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[Provider.SignUp] failed to hash password")
	}

	now := p.nowFunc()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		DateJoined:   now,
		LastLogin:    now,
	}
	if err := p.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[Provider.SignUp] failed to create user")
	}
	return &LocalIdentity{ID: user.ID}, nil
}
