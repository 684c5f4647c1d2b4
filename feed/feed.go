// Package feed builds the recent achievement feed of the characters a user follows.
package feed

import (
	"context"
	"sort"

	"github.com/jrsteele09/achievement-feed/follows"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/oauthmodel"
	"github.com/jrsteele09/achievement-feed/upstream"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimit       = 50
	defaultConcurrency = 4
)

// Entry is one recently completed achievement of a followed character.
type Entry struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	CompletedTimestamp int64             `json:"completed_timestamp"`
	Character          follows.Character `json:"character"`
}

// FollowLister lists the characters a user follows.
type FollowLister interface {
	ListFollowed(ctx context.Context, userID string) ([]follows.Character, error)
}

// AchievementFetcher reads a character's achievements from the profile API.
type AchievementFetcher interface {
	FetchAchievements(ctx context.Context, authCtx oauthmodel.AuthenticatedContext, realmSlug, characterName string) (upstream.AchievementSummary, error)
}

type Builder struct {
	follows      FollowLister
	achievements AchievementFetcher
	limit        int
	concurrency  int
}

type BuilderOption func(*Builder)

// WithLimit caps the number of entries in a feed.
func WithLimit(limit int) BuilderOption {
	return func(b *Builder) {
		b.limit = limit
	}
}

// WithConcurrency caps the number of profile requests in flight for one feed.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		b.concurrency = n
	}
}

func NewBuilder(followLister FollowLister, achievements AchievementFetcher, opts ...BuilderOption) (*Builder, error) {
	if followLister == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewBuilder] follow lister is required")
	}
	if achievements == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewBuilder] achievement fetcher is required")
	}

	b := &Builder{
		follows:      followLister,
		achievements: achievements,
		limit:        DefaultLimit,
		concurrency:  defaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.limit <= 0 {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewBuilder] limit must be positive")
	}
	if b.concurrency <= 0 {
		b.concurrency = defaultConcurrency
	}
	return b, nil
}

// Build returns the newest achievements across every character the caller follows. Any failed
// profile request fails the whole feed.
func (b *Builder) Build(ctx context.Context, authCtx oauthmodel.AuthenticatedContext) ([]Entry, error) {
	if authCtx.UserID == "" {
		return nil, errors.Wrap(apperrors.ErrUnauthenticated, "[Builder.Build] session has no user")
	}

	followed, err := b.follows.ListFollowed(ctx, authCtx.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "[Builder.Build] failed to list followed characters")
	}

	perCharacter := make([][]Entry, len(followed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, character := range followed {
		g.Go(func() error {
			summary, err := b.achievements.FetchAchievements(gctx, authCtx, character.RealmSlug, character.Name)
			if err != nil {
				return err
			}

			entries := make([]Entry, 0, len(summary.Recent))
			for _, a := range summary.Recent {
				entries = append(entries, Entry{
					ID:                 a.ID,
					Name:               a.Name,
					CompletedTimestamp: a.CompletedTimestamp,
					Character:          character,
				})
			}
			perCharacter[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	feed := []Entry{}
	for _, entries := range perCharacter {
		feed = append(feed, entries...)
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CompletedTimestamp > feed[j].CompletedTimestamp
	})
	if len(feed) > b.limit {
		feed = feed[:b.limit]
	}
	return feed, nil
}
