package repofake

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/follows"
)

var _ follows.Repo = (*FakeFollowRepo)(nil)

type characterKey struct {
	name      string
	realmSlug string
}

type FakeFollowRepo struct {
	characters map[characterKey]follows.Character
	follows    map[string]map[int64]struct{} // user id to followed character ids
	nextID     int64
	lock       sync.RWMutex
}

func NewFakeFollowRepo() *FakeFollowRepo {
	return &FakeFollowRepo{
		characters: make(map[characterKey]follows.Character),
		follows:    make(map[string]map[int64]struct{}),
	}
}

func (r *FakeFollowRepo) UpsertCharacter(_ context.Context, character follows.Character) (follows.Character, error) {
	if err := character.Validate(); err != nil {
		return follows.Character{}, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	return r.upsert(character), nil
}

func (r *FakeFollowRepo) upsert(character follows.Character) follows.Character {
	key := characterKey{name: follows.NameKey(character.Name), realmSlug: character.RealmSlug}
	if existing, ok := r.characters[key]; ok {
		character.ID = existing.ID
	} else {
		r.nextID++
		character.ID = r.nextID
	}
	r.characters[key] = character
	return character
}

func (r *FakeFollowRepo) Follow(_ context.Context, userID string, character follows.Character) (follows.Character, error) {
	if err := character.Validate(); err != nil {
		return follows.Character{}, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	stored := r.upsert(character)
	if _, ok := r.follows[userID]; !ok {
		r.follows[userID] = make(map[int64]struct{})
	}
	r.follows[userID][stored.ID] = struct{}{}
	return stored, nil
}

func (r *FakeFollowRepo) Unfollow(_ context.Context, userID, realmSlug, name string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	character, ok := r.characters[characterKey{name: follows.NameKey(name), realmSlug: realmSlug}]
	if !ok {
		return apperrors.ErrNotFound
	}
	if _, ok := r.follows[userID][character.ID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.follows[userID], character.ID)
	return nil
}

func (r *FakeFollowRepo) ListFollowed(_ context.Context, userID string) ([]follows.Character, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	followed := make([]follows.Character, 0, len(r.follows[userID]))
	for _, character := range r.characters {
		if _, ok := r.follows[userID][character.ID]; ok {
			followed = append(followed, character)
		}
	}

	sort.Slice(followed, func(i, j int) bool {
		if followed[i].Name != followed[j].Name {
			return followed[i].Name < followed[j].Name
		}
		return followed[i].RealmSlug < followed[j].RealmSlug
	})
	return followed, nil
}

// CharacterCount returns the number of stored character records.
func (r *FakeFollowRepo) CharacterCount() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.characters)
}
