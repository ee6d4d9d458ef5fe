package article

import (
	"log/slog"
	"net/http"

	"newshub/internal/domain/entity"
	"newshub/internal/handler/http/respond"
	"newshub/internal/observability/logging"
)

// ListHandler serves the merged feed for an arbitrary query.
type ListHandler struct{ Svc Aggregator }

// ServeHTTP 記事一覧取得
// GET /articles?q=&sources=&categories=&from=&to=&page=&pageSize=&sortBy=
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := ParseParams(r)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	resp, err := h.Svc.FetchAll(r.Context(), p)
	writeFeed(w, r, "list", resp, err)
}

// TopHandler serves the newest articles across every provider.
type TopHandler struct{ Svc Aggregator }

// ServeHTTP トップ記事取得
// GET /articles/top
func (h TopHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := ParseParams(r)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	resp, err := h.Svc.TopHeadlines(r.Context(), p)
	writeFeed(w, r, "top", resp, err)
}

// writeFeed writes an aggregated page, or the error it failed with.
func writeFeed(w http.ResponseWriter, r *http.Request, op string, resp entity.ArticleResponse, err error) {
	logger := logging.FromContext(r.Context())
	if err != nil {
		logger.Warn("article request failed",
			slog.String("op", op),
			slog.Any("error", err))
		respond.FromError(w, err)
		return
	}
	if failed := resp.FailedProviders(); failed > 0 {
		logger.Info("partial feed served",
			slog.String("op", op),
			slog.Int("failed_providers", failed),
			slog.Int("articles", len(resp.Articles)))
	}
	respond.JSON(w, http.StatusOK, resp)
}
