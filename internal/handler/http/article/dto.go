// Package article provides the read-only HTTP handlers over the aggregated
// news feed: listing, top headlines, category and section browsing, article
// detail and the filter options used by the front end.
package article

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"newshub/internal/domain/entity"
	"newshub/internal/usecase/aggregate"
	"newshub/internal/usecase/catalog"
)

// Aggregator is the subset of aggregate.Service the handlers use.
type Aggregator interface {
	FetchAll(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error)
	TopHeadlines(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error)
	FetchByCategory(ctx context.Context, category string, p entity.ArticleParams) (entity.ArticleResponse, error)
	BrowseSection(ctx context.Context, section string, p entity.ArticleParams) (entity.ArticleResponse, error)
	FindArticle(ctx context.Context, id string) (aggregate.Detail, error)
}

// Catalog serves the merged source and category lists.
type Catalog interface {
	FilterOptions(ctx context.Context) (catalog.FilterOptions, error)
}

// ParseParams reads ArticleParams from the query string. Multi-value
// parameters accept both repetition and comma-separated values.
func ParseParams(r *http.Request) (entity.ArticleParams, error) {
	q := r.URL.Query()
	p := entity.ArticleParams{
		Query:      strings.TrimSpace(q.Get("q")),
		Sources:    splitList(q["sources"]),
		Categories: splitList(q["categories"]),
		From:       strings.TrimSpace(q.Get("from")),
		To:         strings.TrimSpace(q.Get("to")),
		SortBy:     entity.SortBy(strings.TrimSpace(q.Get("sortBy"))),
	}

	var err error
	if p.Page, err = intParam(q.Get("page"), "page"); err != nil {
		return entity.ArticleParams{}, err
	}
	if p.PageSize, err = intParam(q.Get("pageSize"), "pageSize"); err != nil {
		return entity.ArticleParams{}, err
	}
	return p, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &entity.ValidationError{Field: field, Message: field + " must be an integer"}
	}
	return n, nil
}
