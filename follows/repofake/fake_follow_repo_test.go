package repofake_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/achievement-feed/follows"
	"github.com/jrsteele09/achievement-feed/follows/repofake"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestFakeFollowRepo_FollowIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repofake.NewFakeFollowRepo()
	character := follows.Character{Name: "Thrall", Faction: "Horde", Race: "Orc", Class: "Shaman", AchievementPoints: 10, RealmSlug: "area-52"}

	first, err := repo.Follow(ctx, "user-1", character)
	require.NoError(t, err)

	character.AchievementPoints = 20
	second, err := repo.Follow(ctx, "user-1", character)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, repo.CharacterCount())

	followed, err := repo.ListFollowed(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, followed, 1)
	require.EqualValues(t, 20, followed[0].AchievementPoints)

	require.NoError(t, repo.Unfollow(ctx, "user-1", "area-52", "Thrall"))
	require.ErrorIs(t, repo.Unfollow(ctx, "user-1", "area-52", "Thrall"), apperrors.ErrNotFound)
	require.Equal(t, 1, repo.CharacterCount())
}

func TestFakeFollowRepo_NameMatchedCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	repo := repofake.NewFakeFollowRepo()
	character := follows.Character{Name: "Thrall", Faction: "Horde", Race: "Orc", Class: "Shaman", AchievementPoints: 10, RealmSlug: "area-52"}

	_, err := repo.Follow(ctx, "user-1", character)
	require.NoError(t, err)
	character.Name = "thrall"
	_, err = repo.Follow(ctx, "user-1", character)
	require.NoError(t, err)
	require.Equal(t, 1, repo.CharacterCount())

	require.NoError(t, repo.Unfollow(ctx, "user-1", "area-52", "THRALL"))
}
