// Package catalog serves the reference data filter UIs offer: the
// publications and the categories the providers can filter on.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/provider"
	"newshub/internal/observability/metrics"
)

// ErrUnavailable is returned when no loader produced any entry and nothing
// is cached yet.
var ErrUnavailable = errors.New("catalog unavailable")

// fixedSources stand in for the providers that publish a single
// publication and have no sources endpoint.
var fixedSources = []entity.ReferenceItem{
	{ID: "the-guardian", Name: "The Guardian", Provider: entity.ProviderGuardian},
	{ID: "new-york-times", Name: "New York Times", Provider: entity.ProviderNYTimes},
}

// Loader fetches one provider's reference list.
type Loader struct {
	Provider entity.ProviderID
	Load     func(ctx context.Context) ([]entity.ReferenceItem, error)
}

// FilterOptions is the merged reference data.
type FilterOptions struct {
	Sources    []entity.ReferenceItem `json:"sources"`
	Categories []entity.ReferenceItem `json:"categories"`
	LoadedAt   time.Time              `json:"loadedAt"`
}

func (f FilterOptions) clone() FilterOptions {
	out := f
	out.Sources = cloneItems(f.Sources)
	out.Categories = cloneItems(f.Categories)
	return out
}

// cloneItems copies items; the result is never nil so it encodes as [].
func cloneItems(items []entity.ReferenceItem) []entity.ReferenceItem {
	if items == nil {
		return []entity.ReferenceItem{}
	}
	return slices.Clone(items)
}

// Service caches FilterOptions. The first call loads lazily; Refresh
// reloads on demand and is what the scheduler calls.
type Service struct {
	sources    []Loader
	categories []Loader
	logger     *slog.Logger
	now        func() time.Time

	mu     sync.RWMutex
	cached *FilterOptions
	sf     singleflight.Group
}

// NewService creates a catalog over the given loaders. When two loaders
// expose the same id, the entry keeps the position of the earlier loader
// and takes the value of the later one.
func NewService(logger *slog.Logger, sources, categories []Loader) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sources:    sources,
		categories: categories,
		logger:     logger,
		now:        time.Now,
	}
}

// FilterOptions returns the cached reference data, loading it on first use.
func (s *Service) FilterOptions(ctx context.Context) (FilterOptions, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached.clone(), nil
	}
	return s.Refresh(ctx)
}

// Refresh reloads every list. Provider failures are absorbed; when every
// loader fails the previous cache is kept and ErrUnavailable is returned
// only if there is nothing cached.
func (s *Service) Refresh(ctx context.Context) (FilterOptions, error) {
	v, err, _ := s.sf.Do("refresh", func() (any, error) {
		return s.load(ctx)
	})
	if err != nil {
		return FilterOptions{}, err
	}
	return v.(FilterOptions).clone(), nil
}

func (s *Service) load(ctx context.Context) (FilterOptions, error) {
	var (
		srcLists, catLists [][]entity.ReferenceItem
		failed             int
		mu                 sync.Mutex
	)
	srcLists = make([][]entity.ReferenceItem, len(s.sources))
	catLists = make([][]entity.ReferenceItem, len(s.categories))

	var g errgroup.Group
	run := func(l Loader, dst *[]entity.ReferenceItem) {
		g.Go(func() error {
			items, err := l.Load(ctx)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				s.logger.Warn("catalog loader failed",
					slog.String("provider", l.Provider.String()),
					slog.String("kind", string(provider.KindOf(err))),
					slog.Any("error", err))
				return nil
			}
			for i := range items {
				if items[i].Provider == "" {
					items[i].Provider = l.Provider
				}
			}
			*dst = items
			return nil
		})
	}
	for i, l := range s.sources {
		run(l, &srcLists[i])
	}
	for i, l := range s.categories {
		run(l, &catLists[i])
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return FilterOptions{}, fmt.Errorf("refresh catalog: %w", err)
	}

	total := len(s.sources) + len(s.categories)
	if total > 0 && failed == total {
		metrics.RecordCatalogRefresh(false, 0, 0)
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.cached != nil {
			return *s.cached, nil
		}
		return FilterOptions{}, fmt.Errorf("refresh catalog: %w", ErrUnavailable)
	}

	opts := FilterOptions{
		Sources:    dedupe(append(srcLists, fixedSources)),
		Categories: dedupe(catLists),
		LoadedAt:   s.now(),
	}
	metrics.RecordCatalogRefresh(true, len(opts.Sources), len(opts.Categories))

	s.mu.Lock()
	s.cached = &opts
	s.mu.Unlock()
	return opts, nil
}

// dedupe concatenates the lists in order, one entry per id. A repeated id
// keeps its first position and takes the latest value.
func dedupe(lists [][]entity.ReferenceItem) []entity.ReferenceItem {
	index := make(map[string]int)
	out := []entity.ReferenceItem{}
	for _, list := range lists {
		for _, it := range list {
			if i, dup := index[it.ID]; dup {
				out[i] = it
				continue
			}
			index[it.ID] = len(out)
			out = append(out, it)
		}
	}
	return out
}
