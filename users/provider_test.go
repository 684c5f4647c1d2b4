package users_test

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/users"
	"github.com/jrsteele09/achievement-feed/users/repofake"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	now      time.Time
	repo     *repofake.FakeUserRepo
	provider *users.Provider
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		now:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		repo: repofake.NewFakeUserRepo(),
	}

	var err error
	f.provider, err = users.NewProvider(f.repo, users.WithNowFunc(func() time.Time { return f.now }))
	require.NoError(t, err)
	return f
}

func TestProvider_SignUpThenSignIn(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	created, err := f.provider.SignUp(ctx, " Jaina@Example.com", "Passw0rdOK")
	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotEmpty(t, created.ID)

	stored, err := f.repo.GetByEmail(ctx, "jaina@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, stored.ID)
	require.NotEqual(t, "Passw0rdOK", stored.PasswordHash)
	require.Equal(t, f.now, stored.DateJoined)

	f.now = f.now.Add(time.Hour)
	identity, err := f.provider.SignIn(ctx, "jaina@example.com", "Passw0rdOK")
	require.NoError(t, err)
	require.Equal(t, created, identity)

	stored, err = f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, f.now, stored.LastLogin)
}

func TestProvider_SignInNoMatch(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.provider.SignUp(ctx, "jaina@example.com", "Passw0rdOK")
	require.NoError(t, err)

	identity, err := f.provider.SignIn(ctx, "jaina@example.com", "WrongPassw0rd")
	require.NoError(t, err)
	require.Nil(t, identity)

	identity, err = f.provider.SignIn(ctx, "nobody@example.com", "Passw0rdOK")
	require.NoError(t, err)
	require.Nil(t, identity)
}

func TestProvider_SignUpExistingEmail(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.provider.SignUp(ctx, "jaina@example.com", "Passw0rdOK")
	require.NoError(t, err)

	identity, err := f.provider.SignUp(ctx, "JAINA@example.com", "Differ3ntPass")
	require.NoError(t, err)
	require.Nil(t, identity)
}

func TestProvider_SignUpWeakPassword(t *testing.T) {
	f := setupTestFixture(t)

	identity, err := f.provider.SignUp(context.Background(), "jaina@example.com", "weak")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.Nil(t, identity)

	_, err = f.repo.GetByEmail(context.Background(), "jaina@example.com")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProvider_SignUpPasswordTooLong(t *testing.T) {
	f := setupTestFixture(t)

	identity, err := f.provider.SignUp(context.Background(), "jaina@example.com", "Aa1"+strings.Repeat("x", 80))
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.Nil(t, identity)
}

func TestNewProvider_RequiresRepo(t *testing.T) {
	_, err := users.NewProvider(nil)
	require.ErrorIs(t, err, apperrors.ErrConfiguration)
}
