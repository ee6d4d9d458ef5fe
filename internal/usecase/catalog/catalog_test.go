package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/provider"
)

/* ───── ヘルパ ───── */

func static(p entity.ProviderID, calls *atomic.Int32, items ...entity.ReferenceItem) Loader {
	return Loader{Provider: p, Load: func(context.Context) ([]entity.ReferenceItem, error) {
		if calls != nil {
			calls.Add(1)
		}
		return append([]entity.ReferenceItem(nil), items...), nil
	}}
}

func broken(p entity.ProviderID) Loader {
	return Loader{Provider: p, Load: func(context.Context) ([]entity.ReferenceItem, error) {
		return nil, &provider.Error{Provider: p, Kind: provider.KindRateLimit, StatusCode: 429}
	}}
}

func item(id, name string) entity.ReferenceItem {
	return entity.ReferenceItem{ID: id, Name: name}
}

func ids(items []entity.ReferenceItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

/* ───── tests ───── */

func TestFilterOptions_MergesAndDedupes(t *testing.T) {
	svc := NewService(nil,
		[]Loader{static(entity.ProviderNewsAPI, nil, item("bbc-news", "BBC News"), item("cnn", "CNN"))},
		[]Loader{
			static(entity.ProviderNYTimes, nil, item("world", "World"), item("arts", "Arts")),
			static(entity.ProviderGuardian, nil, item("world", "World news"), item("technology", "Technology")),
		},
	)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	got, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)

	want := FilterOptions{
		Sources: []entity.ReferenceItem{
			{ID: "bbc-news", Name: "BBC News", Provider: entity.ProviderNewsAPI},
			{ID: "cnn", Name: "CNN", Provider: entity.ProviderNewsAPI},
			{ID: "the-guardian", Name: "The Guardian", Provider: entity.ProviderGuardian},
			{ID: "new-york-times", Name: "New York Times", Provider: entity.ProviderNYTimes},
		},
		Categories: []entity.ReferenceItem{
			// 位置は先の loader、値は後の loader
			{ID: "world", Name: "World news", Provider: entity.ProviderGuardian},
			{ID: "arts", Name: "Arts", Provider: entity.ProviderNYTimes},
			{ID: "technology", Name: "Technology", Provider: entity.ProviderGuardian},
		},
		LoadedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FilterOptions mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterOptions_CachesAfterFirstLoad(t *testing.T) {
	var calls atomic.Int32
	svc := NewService(nil, []Loader{static(entity.ProviderNewsAPI, &calls, item("a", "A"))}, nil)

	for range 3 {
		_, err := svc.FilterOptions(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFilterOptions_ReturnsCopies(t *testing.T) {
	svc := NewService(nil, []Loader{static(entity.ProviderNewsAPI, nil, item("a", "A"))}, nil)

	first, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	first.Sources[0].Name = "mutated"

	second, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A", second.Sources[0].Name)
}

func TestRefresh_AbsorbsProviderFailure(t *testing.T) {
	svc := NewService(nil,
		[]Loader{broken(entity.ProviderNewsAPI)},
		[]Loader{broken(entity.ProviderGuardian), static(entity.ProviderNYTimes, nil, item("arts", "Arts"))},
	)

	got, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"the-guardian", "new-york-times"}, ids(got.Sources))
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "arts", got.Categories[0].ID)
}

func TestFilterOptions_EmptyListsEncodeAsArrays(t *testing.T) {
	svc := NewService(nil,
		[]Loader{static(entity.ProviderNewsAPI, nil, item("bbc-news", "BBC News"))},
		[]Loader{broken(entity.ProviderNYTimes), broken(entity.ProviderGuardian)},
	)

	// 1回目はロード結果、2回目はキャッシュのコピー
	for range 2 {
		got, err := svc.FilterOptions(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got.Categories)

		raw, err := json.Marshal(got)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"categories":[]`)
	}
}

func TestCloneItems_NilBecomesEmpty(t *testing.T) {
	got := FilterOptions{}.clone()
	assert.NotNil(t, got.Sources)
	assert.NotNil(t, got.Categories)
}

func TestRefresh_AllFailKeepsPreviousCache(t *testing.T) {
	var fail atomic.Bool
	flaky := Loader{Provider: entity.ProviderNewsAPI, Load: func(context.Context) ([]entity.ReferenceItem, error) {
		if fail.Load() {
			return nil, errors.New("boom")
		}
		return []entity.ReferenceItem{item("a", "A")}, nil
	}}
	svc := NewService(nil, []Loader{flaky}, nil)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	got, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "the-guardian", "new-york-times"}, ids(got.Sources))
}

func TestRefresh_AllFailWithoutCache(t *testing.T) {
	svc := NewService(nil, []Loader{broken(entity.ProviderNewsAPI)}, []Loader{broken(entity.ProviderGuardian)})

	_, err := svc.FilterOptions(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRefresh_CancelledContext(t *testing.T) {
	svc := NewService(nil, []Loader{static(entity.ProviderNewsAPI, nil, item("a", "A"))}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
