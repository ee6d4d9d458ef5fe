package article

import (
	"errors"
	"net/http"

	"newshub/internal/handler/http/respond"
	"newshub/internal/usecase/catalog"
)

// FiltersHandler serves the source and category lists for filter UIs.
type FiltersHandler struct{ Svc Catalog }

// ServeHTTP フィルタ候補取得
// GET /filters
func (h FiltersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Svc.FilterOptions(r.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrUnavailable) {
			respond.SafeError(w, http.StatusServiceUnavailable, err)
			return
		}
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, opts)
}
