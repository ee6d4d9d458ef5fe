package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/provider"
	"newshub/internal/observability/logging"
	"newshub/internal/observability/metrics"
)

// Source is one news provider adapter.
type Source interface {
	Provider() entity.ProviderID
	SearchArticles(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error)
}

// SectionSource is a Source that can also list the articles of one section
// or category.
type SectionSource interface {
	Source
	BrowseSection(ctx context.Context, section string, p entity.ArticleParams) (entity.ArticleResponse, error)
}

// Service merges provider results.
type Service struct {
	sources []Source
	logger  *slog.Logger
}

// NewService creates an aggregation Service over the given sources. The
// order of sources is the concatenation order before sorting.
func NewService(logger *slog.Logger, sources ...Source) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sources: sources, logger: logger}
}

// Providers lists the configured providers in order.
func (s *Service) Providers() []entity.ProviderID {
	out := make([]entity.ProviderID, len(s.sources))
	for i, src := range s.sources {
		out[i] = src.Provider()
	}
	return out
}

// outcome is the result of one provider call.
type outcome struct {
	provider entity.ProviderID
	resp     entity.ArticleResponse
	err      error
	skipped  bool
}

// callFunc performs one provider call. It reports skipped=true when the
// source does not support the operation.
type callFunc func(ctx context.Context, src Source) (resp entity.ArticleResponse, skipped bool, err error)

// gather invokes call on every source concurrently and waits for all of
// them. Failures, including panics, are recorded per source and never
// cancel sibling calls. The only error returned is the caller's own
// context error.
func (s *Service) gather(ctx context.Context, op string, call callFunc) ([]outcome, error) {
	if len(s.sources) == 0 {
		return nil, ErrNoSources
	}

	results := make([]outcome, len(s.sources))
	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() error {
			results[i] = s.invoke(ctx, src, call)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger := logging.WithRequestID(ctx, s.logger)
	for _, r := range results {
		if r.err == nil {
			continue
		}
		kind := string(provider.KindOf(r.err))
		metrics.RecordAbsorbedFailure(r.provider.String(), kind)
		logger.Warn("provider failure absorbed",
			slog.String("operation", op),
			slog.String("provider", r.provider.String()),
			slog.String("kind", kind),
			slog.Any("error", r.err))
	}
	return results, nil
}

func (s *Service) invoke(ctx context.Context, src Source, call callFunc) (out outcome) {
	out.provider = src.Provider()
	defer func() {
		if rec := recover(); rec != nil {
			out.resp = entity.EmptyResponse()
			out.err = &provider.Error{
				Provider: out.provider,
				Kind:     provider.KindPanic,
				Err:      fmt.Errorf("recovered: %v", rec),
			}
		}
	}()

	resp, skipped, err := call(ctx, src)
	if err != nil {
		return outcome{provider: out.provider, resp: entity.EmptyResponse(), err: err}
	}
	if resp.Articles == nil {
		resp.Articles = []entity.Article{}
	}
	return outcome{provider: out.provider, resp: resp, skipped: skipped}
}

func search(p entity.ArticleParams) callFunc {
	return func(ctx context.Context, src Source) (entity.ArticleResponse, bool, error) {
		resp, err := src.SearchArticles(ctx, p.Clone())
		return resp, false, err
	}
}

// FetchAll queries every provider with p and returns one page of the
// merged feed, newest first regardless of p.SortBy.
func (s *Service) FetchAll(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error) {
	if err := p.Validate(); err != nil {
		return entity.ArticleResponse{}, fmt.Errorf("FetchAll: %w", err)
	}
	return s.run(ctx, "fetch_all", p, search(p))
}

// TopHeadlines is FetchAll with recency ordering requested from the providers.
func (s *Service) TopHeadlines(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error) {
	p = p.Clone()
	p.SortBy = entity.SortPublishedAt
	if err := p.Validate(); err != nil {
		return entity.ArticleResponse{}, fmt.Errorf("TopHeadlines: %w", err)
	}
	return s.run(ctx, "top_headlines", p, search(p))
}

// FetchByCategory is FetchAll restricted to one category.
func (s *Service) FetchByCategory(ctx context.Context, category string, p entity.ArticleParams) (entity.ArticleResponse, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return entity.ArticleResponse{}, fmt.Errorf("FetchByCategory: %w", ErrInvalidSection)
	}
	p = p.Clone()
	p.Categories = []string{category}
	p.SortBy = entity.SortPublishedAt
	if err := p.Validate(); err != nil {
		return entity.ArticleResponse{}, fmt.Errorf("FetchByCategory: %w", err)
	}
	return s.run(ctx, "fetch_by_category", p, search(p))
}

// BrowseSection merges each provider's section listing: NewsAPI top
// headlines of the category, the Guardian section search and NYT top
// stories. Sources without a section endpoint are skipped.
func (s *Service) BrowseSection(ctx context.Context, section string, p entity.ArticleParams) (entity.ArticleResponse, error) {
	section = strings.TrimSpace(section)
	if section == "" {
		return entity.ArticleResponse{}, fmt.Errorf("BrowseSection: %w", ErrInvalidSection)
	}
	if err := p.Validate(); err != nil {
		return entity.ArticleResponse{}, fmt.Errorf("BrowseSection: %w", err)
	}
	return s.run(ctx, "browse_section", p, func(ctx context.Context, src Source) (entity.ArticleResponse, bool, error) {
		ss, ok := src.(SectionSource)
		if !ok {
			return entity.EmptyResponse(), true, nil
		}
		resp, err := ss.BrowseSection(ctx, section, p.Clone())
		return resp, false, err
	})
}

func (s *Service) run(ctx context.Context, op string, p entity.ArticleParams, call callFunc) (entity.ArticleResponse, error) {
	start := time.Now()
	results, err := s.gather(ctx, op, call)
	if err != nil {
		return entity.ArticleResponse{}, err
	}
	merged, statuses, total := merge(results)
	metrics.RecordAggregation(op, len(merged), time.Since(start))

	return entity.ArticleResponse{
		Articles:     paginate(merged, p.PageOrDefault(), p.PageSizeOrDefault()),
		TotalResults: total,
		Sources:      statuses,
		Page:         p.PageOrDefault(),
		PageSize:     p.PageSizeOrDefault(),
	}, nil
}
