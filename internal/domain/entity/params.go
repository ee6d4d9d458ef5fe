package entity

// SortBy is the requested ordering passed down to the providers.
// The aggregated feed is always ordered by recency regardless of this value.
type SortBy string

// Supported sort orders.
const (
	SortRelevancy   SortBy = "relevancy"
	SortPopularity  SortBy = "popularity"
	SortPublishedAt SortBy = "publishedAt"
)

// IsValid reports whether s is one of the supported sort orders.
func (s SortBy) IsValid() bool {
	switch s {
	case SortRelevancy, SortPopularity, SortPublishedAt:
		return true
	default:
		return false
	}
}

// Paging defaults shared by the adapters and the aggregator.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// allCategories is the pseudo-category filter UIs send to mean "no filter".
const allCategories = "all"

// ArticleParams describes one article query. Every field is optional:
// absent filters mean "no constraint" and absent paging falls back to defaults.
// From and To are inclusive ISO dates (YYYY-MM-DD).
type ArticleParams struct {
	Query      string   `json:"q,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	Categories []string `json:"categories,omitempty"`
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Page       int      `json:"page,omitempty"`
	PageSize   int      `json:"pageSize,omitempty"`
	SortBy     SortBy   `json:"sortBy,omitempty"`
}

// PageOrDefault returns Page, or DefaultPage when unset.
func (p ArticleParams) PageOrDefault() int {
	if p.Page <= 0 {
		return DefaultPage
	}
	return p.Page
}

// PageSizeOrDefault returns PageSize, or DefaultPageSize when unset.
func (p ArticleParams) PageSizeOrDefault() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

// SortByOrDefault returns SortBy, or SortPublishedAt when unset.
func (p ArticleParams) SortByOrDefault() SortBy {
	if p.SortBy == "" {
		return SortPublishedAt
	}
	return p.SortBy
}

// CategoryFilter returns the categories to filter on. The second result is
// false when no category filter applies, either because none was requested
// or because the first entry is the "all" pseudo-category.
func (p ArticleParams) CategoryFilter() ([]string, bool) {
	if len(p.Categories) == 0 || p.Categories[0] == allCategories {
		return nil, false
	}
	return p.Categories, true
}

// Clone returns a deep copy so callers can modify slices freely.
func (p ArticleParams) Clone() ArticleParams {
	out := p
	out.Sources = cloneStrings(p.Sources)
	out.Categories = cloneStrings(p.Categories)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// SourceStatusKind describes how one provider contributed to an aggregation.
type SourceStatusKind string

// Per-provider outcomes. Failed and empty are deliberately distinct.
const (
	SourceOK     SourceStatusKind = "ok"
	SourceEmpty  SourceStatusKind = "empty"
	SourceFailed SourceStatusKind = "failed"
)

// SourceStatus is the outcome of one provider call within an aggregation.
type SourceStatus struct {
	Provider     ProviderID       `json:"provider"`
	Status       SourceStatusKind `json:"status"`
	TotalResults int              `json:"totalResults"`
	ArticleCount int              `json:"articleCount"`
	ErrorKind    string           `json:"errorKind,omitempty"`
}

// ArticleResponse is one page of articles plus the provider-reported total.
// TotalResults is the sum of independent provider totals, not the size of
// the merged set.
type ArticleResponse struct {
	Articles     []Article      `json:"articles"`
	TotalResults int            `json:"totalResults"`
	Sources      []SourceStatus `json:"sources,omitempty"`
	Page         int            `json:"page,omitempty"`
	PageSize     int            `json:"pageSize,omitempty"`
}

// EmptyResponse is the value substituted for a provider that failed.
func EmptyResponse() ArticleResponse {
	return ArticleResponse{Articles: []Article{}, TotalResults: 0}
}

// FailedProviders returns how many entries in Sources failed.
func (r ArticleResponse) FailedProviders() int {
	n := 0
	for _, s := range r.Sources {
		if s.Status == SourceFailed {
			n++
		}
	}
	return n
}
