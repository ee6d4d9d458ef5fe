package article

import "net/http"

// Register registers the article and filter routes with the given mux.
func Register(mux *http.ServeMux, svc Aggregator, cat Catalog) {
	mux.Handle("GET /articles", ListHandler{svc})
	mux.Handle("GET /articles/top", TopHandler{svc})
	mux.Handle("GET /articles/category/{category}", CategoryHandler{svc})
	mux.Handle("GET /articles/section/{section}", SectionHandler{svc})
	mux.Handle("GET /articles/item/{id...}", GetHandler{svc})
	mux.Handle("GET /filters", FiltersHandler{cat})
}
