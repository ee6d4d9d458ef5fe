package article

import (
	"net/http"

	"newshub/internal/handler/http/respond"
)

// CategoryHandler serves the merged feed of one category.
type CategoryHandler struct{ Svc Aggregator }

// ServeHTTP カテゴリ別記事取得
// GET /articles/category/{category}
func (h CategoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := ParseParams(r)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	resp, err := h.Svc.FetchByCategory(r.Context(), r.PathValue("category"), p)
	writeFeed(w, r, "category", resp, err)
}

// SectionHandler serves each provider's section listing, merged.
type SectionHandler struct{ Svc Aggregator }

// ServeHTTP セクション別記事取得
// GET /articles/section/{section}
func (h SectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := ParseParams(r)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	resp, err := h.Svc.BrowseSection(r.Context(), r.PathValue("section"), p)
	writeFeed(w, r, "section", resp, err)
}
