package article

import (
	"log/slog"
	"net/http"

	"newshub/internal/handler/http/respond"
	"newshub/internal/observability/logging"
)

// GetHandler serves one article with its related articles.
type GetHandler struct{ Svc Aggregator }

// ServeHTTP 記事詳細取得
// GET /articles/item/{id...}
// Provider ids may contain slashes; clients should path-escape them.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	detail, err := h.Svc.FindArticle(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Debug("article lookup failed",
			slog.String("article_id", id),
			slog.Any("error", err))
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, detail)
}
