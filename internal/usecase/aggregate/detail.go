package aggregate

import (
	"context"
	"fmt"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/observability/metrics"
	"newshub/internal/utils/text"
)

const (
	// detailPageSize is how many articles are requested from each provider when resolving an id.
	detailPageSize = 100
	maxRelated     = 3
	excerptRunes   = 280
)

// Detail is one article with its related articles and a plain-text rendering.
type Detail struct {
	Article        entity.Article        `json:"article"`
	Related        []entity.Article      `json:"related"`
	PlainText      string                `json:"plainText"`
	Excerpt        string                `json:"excerpt"`
	WordCount      int                   `json:"wordCount"`
	ReadingMinutes int                   `json:"readingMinutes"`
	Sources        []entity.SourceStatus `json:"sources"`
}

// FindArticle resolves an article id against the first page of every
// provider's default search and returns it with up to three related
// articles that share its source name or category.
func (s *Service) FindArticle(ctx context.Context, id string) (Detail, error) {
	if id == "" {
		return Detail{}, fmt.Errorf("FindArticle: %w", ErrArticleNotFound)
	}
	start := time.Now()
	p := entity.ArticleParams{Page: 1, PageSize: detailPageSize}
	results, err := s.gather(ctx, "find_article", search(p))
	if err != nil {
		return Detail{}, err
	}

	// 関連記事は並び替え前の連結順で選ぶ
	all, statuses, _ := collect(results)
	metrics.RecordAggregation("find_article", len(all), time.Since(start))

	idx := -1
	for i, a := range all {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Detail{}, fmt.Errorf("FindArticle %q: %w", id, ErrArticleNotFound)
	}

	article := all[idx]
	related := make([]entity.Article, 0, maxRelated)
	for _, a := range all {
		if len(related) == maxRelated {
			break
		}
		if a.ID != id && isRelated(article, a) {
			related = append(related, a)
		}
	}

	d := Detail{Article: article, Related: related, Sources: statuses}
	d.PlainText = bestText(article)
	d.Excerpt = text.Excerpt(d.PlainText, excerptRunes)
	d.WordCount = text.WordCount(d.PlainText)
	d.ReadingMinutes = text.ReadingMinutes(d.PlainText)
	return d, nil
}

// isRelated matches on source name or on a shared, non-null category.
func isRelated(a, b entity.Article) bool {
	if a.Source.Name != "" && a.Source.Name == b.Source.Name {
		return true
	}
	return a.Category != nil && b.Category != nil && *a.Category == *b.Category
}

// bestText renders content, falling back to the description. Markup that
// cannot be parsed falls back to the raw string.
func bestText(a entity.Article) string {
	raw := entity.Deref(a.Content)
	if raw == "" {
		raw = entity.Deref(a.Description)
	}
	plain, err := text.PlainText(raw)
	if err != nil {
		return raw
	}
	return plain
}
