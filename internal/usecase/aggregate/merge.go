package aggregate

import (
	"slices"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/provider"
	"newshub/internal/observability/metrics"
)

// merge is collect followed by a newest-first sort.
func merge(results []outcome) ([]entity.Article, []entity.SourceStatus, int) {
	merged, statuses, total := collect(results)
	sortNewestFirst(merged)
	return merged, statuses, total
}

// collect concatenates the provider results in source order and prefixes
// ids with their provider. It also returns one status per provider and the
// sum of the provider-reported totals.
func collect(results []outcome) ([]entity.Article, []entity.SourceStatus, int) {
	size := 0
	for _, r := range results {
		size += len(r.resp.Articles)
	}

	merged := make([]entity.Article, 0, size)
	statuses := make([]entity.SourceStatus, 0, len(results))
	total := 0
	for _, r := range results {
		if r.skipped {
			continue
		}
		st := entity.SourceStatus{
			Provider:     r.provider,
			TotalResults: r.resp.TotalResults,
			ArticleCount: len(r.resp.Articles),
		}
		switch {
		case r.err != nil:
			st.Status = entity.SourceFailed
			st.ErrorKind = string(provider.KindOf(r.err))
		case len(r.resp.Articles) == 0:
			st.Status = entity.SourceEmpty
		default:
			st.Status = entity.SourceOK
		}
		statuses = append(statuses, st)

		total += r.resp.TotalResults
		metrics.RecordProviderArticles(r.provider.String(), len(r.resp.Articles))
		for _, a := range r.resp.Articles {
			merged = append(merged, a.WithProviderPrefix(r.provider))
		}
	}
	return merged, statuses, total
}

// sortNewestFirst orders articles by publication time, newest first.
// Articles whose timestamp cannot be parsed go last. Ties keep their
// concatenation order.
func sortNewestFirst(articles []entity.Article) {
	type keyed struct {
		a  entity.Article
		t  time.Time
		ok bool
	}
	ks := make([]keyed, len(articles))
	for i, a := range articles {
		t, ok := a.PublishedTime()
		ks[i] = keyed{a: a, t: t, ok: ok}
	}
	slices.SortStableFunc(ks, func(x, y keyed) int {
		switch {
		case x.ok && !y.ok:
			return -1
		case !x.ok && y.ok:
			return 1
		case !x.ok && !y.ok:
			return 0
		}
		return y.t.Compare(x.t)
	})
	for i := range ks {
		articles[i] = ks[i].a
	}
}

// paginate returns the 1-based page of size pageSize, clamped to the list.
func paginate(articles []entity.Article, page, pageSize int) []entity.Article {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = entity.DefaultPageSize
	}
	if page-1 > len(articles)/pageSize {
		return []entity.Article{}
	}
	start := (page - 1) * pageSize
	if start >= len(articles) {
		return []entity.Article{}
	}
	end := min(start+pageSize, len(articles))
	out := make([]entity.Article, end-start)
	copy(out, articles[start:end])
	return out
}
