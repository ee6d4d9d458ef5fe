// Package session provides HTTP handlers for interactive search sessions.
package session

import (
	"context"
	"log/slog"
	"net/http"

	"newshub/internal/domain/entity"
	"newshub/internal/handler/http/respond"
	"newshub/internal/observability/logging"
	"newshub/internal/usecase/search"
)

// Registry is the subset of search.Registry the handlers use.
type Registry interface {
	Create(ctx context.Context, userID string, initial entity.ArticleParams) (*search.Session, error)
	Get(id string) (*search.Session, error)
	Delete(id string) error
}

// createRequest opens a session. Fetch defaults to true.
type createRequest struct {
	UserID string               `json:"userId"`
	Params entity.ArticleParams `json:"params"`
	Fetch  *bool                `json:"fetch,omitempty"`
}

// patchRequest is either a field change or a single toggle.
type patchRequest struct {
	search.Change
	ToggleSource   *string `json:"toggleSource,omitempty"`
	ToggleCategory *string `json:"toggleCategory,omitempty"`
}

// CreateHandler opens a session and runs its first fetch.
type CreateHandler struct{ Reg Registry }

// ServeHTTP セッション作成
// POST /sessions
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	s, err := h.Reg.Create(r.Context(), req.UserID, req.Params)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	logging.FromContext(r.Context()).Info("session created",
		slog.String("session_id", s.ID()),
		slog.String("user_id", req.UserID))

	if req.Fetch != nil && !*req.Fetch {
		respond.JSON(w, http.StatusCreated, s.Snapshot())
		return
	}
	snap, err := s.Refresh(r.Context())
	if err != nil {
		fail(w, r, "create", err)
		return
	}
	respond.JSON(w, http.StatusCreated, snap)
}

// GetHandler returns the session without fetching.
type GetHandler struct{ Reg Registry }

// ServeHTTP セッション取得
// GET /sessions/{id}
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s, err := h.Reg.Get(r.PathValue("id"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, s.Snapshot())
}

// PatchHandler applies a change or toggle and fetches the result.
type PatchHandler struct{ Reg Registry }

// ServeHTTP セッション更新
// PATCH /sessions/{id}
func (h PatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s, err := h.Reg.Get(r.PathValue("id"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	var req patchRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}

	toggles := 0
	if req.ToggleSource != nil {
		toggles++
	}
	if req.ToggleCategory != nil {
		toggles++
	}
	if toggles > 1 || (toggles == 1 && req.Change != (search.Change{})) {
		respond.FromError(w, &entity.ValidationError{
			Field:   "body",
			Message: "a toggle cannot be combined with other changes",
		})
		return
	}

	var snap search.Snapshot
	switch {
	case req.ToggleSource != nil:
		snap, err = s.ToggleSource(r.Context(), *req.ToggleSource)
	case req.ToggleCategory != nil:
		snap, err = s.ToggleCategory(r.Context(), *req.ToggleCategory)
	default:
		snap, err = s.Apply(r.Context(), req.Change)
	}
	if err != nil {
		fail(w, r, "patch", err)
		return
	}
	respond.JSON(w, http.StatusOK, snap)
}

// ActionHandler runs a parameterless transition: next, refresh or reset.
type ActionHandler struct {
	Reg    Registry
	Action string
	Run    func(s *search.Session, ctx context.Context) (search.Snapshot, error)
}

// ServeHTTP セッション操作
// POST /sessions/{id}/next, /sessions/{id}/refresh, /sessions/{id}/reset
func (h ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s, err := h.Reg.Get(r.PathValue("id"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	snap, err := h.Run(s, r.Context())
	if err != nil {
		fail(w, r, h.Action, err)
		return
	}
	respond.JSON(w, http.StatusOK, snap)
}

// DeleteHandler closes a session.
type DeleteHandler struct{ Reg Registry }

// ServeHTTP セッション削除
// DELETE /sessions/{id}
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Reg.Delete(r.PathValue("id")); err != nil {
		respond.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	logging.FromContext(r.Context()).Warn("session transition failed",
		slog.String("op", op),
		slog.String("session_id", r.PathValue("id")),
		slog.Any("error", err))
	respond.FromError(w, err)
}

// Register registers the session routes with the given mux.
func Register(mux *http.ServeMux, reg Registry) {
	mux.Handle("POST /sessions", CreateHandler{reg})
	mux.Handle("GET /sessions/{id}", GetHandler{reg})
	mux.Handle("PATCH /sessions/{id}", PatchHandler{reg})
	mux.Handle("POST /sessions/{id}/next", ActionHandler{reg, "next", (*search.Session).NextPage})
	mux.Handle("POST /sessions/{id}/refresh", ActionHandler{reg, "refresh", (*search.Session).Refresh})
	mux.Handle("POST /sessions/{id}/reset", ActionHandler{reg, "reset", (*search.Session).Reset})
	mux.Handle("DELETE /sessions/{id}", DeleteHandler{reg})
}
