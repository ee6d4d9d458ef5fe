package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/domain/entity"
)

/* ───── ヘルパ ───── */

type prefsFunc func(ctx context.Context, userID string) (entity.UserPreferences, error)

func (f prefsFunc) Get(ctx context.Context, userID string) (entity.UserPreferences, error) {
	return f(ctx, userID)
}

func alicePrefs() Preferences {
	return prefsFunc(func(_ context.Context, userID string) (entity.UserPreferences, error) {
		p := entity.DefaultPreferences(userID)
		p.PreferredSources = []string{"bbc-news"}
		p.PreferredCategories = []string{"technology"}
		return p, nil
	})
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

/* ───── tests ───── */

func TestRegistry_CreateSeedsFromPreferences(t *testing.T) {
	r := NewRegistry(newFakeFetcher(), alicePrefs(), 0, nil)

	s, err := r.Create(context.Background(), "alice", entity.ArticleParams{Query: "ai"})
	require.NoError(t, err)
	snap := s.Snapshot()
	assert.Equal(t, []string{"bbc-news"}, snap.Params.Sources)
	assert.Equal(t, []string{"technology"}, snap.Params.Categories)
	assert.Equal(t, entity.SortPublishedAt, snap.Params.SortBy)
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, "alice", snap.UserID)
}

func TestRegistry_ExplicitFiltersWinPerField(t *testing.T) {
	tests := []struct {
		name           string
		initial        entity.ArticleParams
		wantSources    []string
		wantCategories []string
	}{
		{
			name:           "categories given",
			initial:        entity.ArticleParams{Categories: []string{"sports"}},
			wantSources:    []string{"bbc-news"},
			wantCategories: []string{"sports"},
		},
		{
			name:           "sources given",
			initial:        entity.ArticleParams{Sources: []string{"cnn"}},
			wantSources:    []string{"cnn"},
			wantCategories: []string{"technology"},
		},
		{
			name:           "both given",
			initial:        entity.ArticleParams{Sources: []string{"cnn"}, Categories: []string{"sports"}},
			wantSources:    []string{"cnn"},
			wantCategories: []string{"sports"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(newFakeFetcher(), alicePrefs(), 0, nil)

			s, err := r.Create(context.Background(), "alice", tt.initial)
			require.NoError(t, err)
			snap := s.Snapshot()
			assert.Equal(t, tt.wantSources, snap.Params.Sources)
			assert.Equal(t, tt.wantCategories, snap.Params.Categories)
		})
	}
}

func TestRegistry_PreferenceErrorIsNotFatal(t *testing.T) {
	prefs := prefsFunc(func(context.Context, string) (entity.UserPreferences, error) {
		return entity.UserPreferences{}, errors.New("store down")
	})
	r := NewRegistry(newFakeFetcher(), prefs, 0, nil)

	s, err := r.Create(context.Background(), "alice", entity.ArticleParams{})
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot().Params.Sources)
}

func TestRegistry_CreateRejectsInvalidParams(t *testing.T) {
	r := NewRegistry(newFakeFetcher(), nil, 0, nil)
	_, err := r.Create(context.Background(), "", entity.ArticleParams{SortBy: "random"})
	assert.ErrorIs(t, err, entity.ErrInvalidParams)
	assert.Zero(t, r.Len())
}

func TestRegistry_GetAndDelete(t *testing.T) {
	r := NewRegistry(newFakeFetcher(), nil, 0, nil)
	r.newID = func() string { return "fixed-id" }

	s, err := r.Create(context.Background(), "", entity.ArticleParams{})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", s.ID())

	got, err := r.Get("fixed-id")
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, r.Delete("fixed-id"))
	_, err = r.Get("fixed-id")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, r.Delete("fixed-id"), ErrSessionNotFound)
}

func TestRegistry_Sweep(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(newFakeFetcher(), nil, 10*time.Minute, nil)
	r.now = c.now

	old, err := r.Create(context.Background(), "", entity.ArticleParams{})
	require.NoError(t, err)
	c.advance(8 * time.Minute)
	fresh, err := r.Create(context.Background(), "", entity.ArticleParams{})
	require.NoError(t, err)
	c.advance(5 * time.Minute)

	assert.Equal(t, 1, r.Sweep())
	_, err = r.Get(old.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(fresh.ID())
	assert.NoError(t, err)

	// 利用されたセッションは期限が延びる
	_, err = fresh.Refresh(context.Background())
	require.NoError(t, err)
	c.advance(9 * time.Minute)
	assert.Zero(t, r.Sweep())
	assert.Equal(t, 1, r.Len())
}
