package follows

import "context"

// Repo stores characters and the users following them.
type Repo interface {
	// UpsertCharacter inserts the character or refreshes the existing record with the same
	// name and realm, returning it with its id.
	UpsertCharacter(ctx context.Context, character Character) (Character, error)

	// Follow upserts the character and records that userID follows it. Following twice is a no-op.
	Follow(ctx context.Context, userID string, character Character) (Character, error)

	// Unfollow removes the follow relation only. Returns apperrors.ErrNotFound when userID
	// does not follow the character.
	Unfollow(ctx context.Context, userID, realmSlug, name string) error

	// ListFollowed returns the characters userID follows ordered by name then realm.
	ListFollowed(ctx context.Context, userID string) ([]Character, error)
}
