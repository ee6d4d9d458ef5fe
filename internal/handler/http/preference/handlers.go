// Package preference provides HTTP handlers for per-user preferences.
package preference

import (
	"context"
	"log/slog"
	"net/http"

	"newshub/internal/domain/entity"
	"newshub/internal/handler/http/respond"
	"newshub/internal/observability/logging"
	prefUC "newshub/internal/usecase/preference"
)

// Service is the subset of preference.Service the handlers use.
type Service interface {
	Get(ctx context.Context, userID string) (entity.UserPreferences, error)
	Apply(ctx context.Context, userID string, patch prefUC.Patch) (entity.UserPreferences, error)
	ToggleDarkMode(ctx context.Context, userID string) (entity.UserPreferences, error)
	Reset(ctx context.Context, userID string) (entity.UserPreferences, error)
}

// GetHandler returns the user's preferences, or the defaults.
type GetHandler struct{ Svc Service }

// ServeHTTP 設定取得
// GET /users/{userID}/preferences
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Svc.Get(r.Context(), r.PathValue("userID"))
	write(w, r, "get", prefs, err)
}

// UpdateHandler applies a partial update.
type UpdateHandler struct{ Svc Service }

// ServeHTTP 設定更新
// PUT /users/{userID}/preferences
// Body fields that are absent are left unchanged.
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var patch prefUC.Patch
	if err := respond.DecodeJSON(r, &patch); err != nil {
		respond.FromError(w, err)
		return
	}
	prefs, err := h.Svc.Apply(r.Context(), r.PathValue("userID"), patch)
	write(w, r, "update", prefs, err)
}

// ResetHandler restores the defaults.
type ResetHandler struct{ Svc Service }

// ServeHTTP 設定リセット
// DELETE /users/{userID}/preferences
func (h ResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Svc.Reset(r.Context(), r.PathValue("userID"))
	write(w, r, "reset", prefs, err)
}

// DarkModeHandler flips the dark mode flag.
type DarkModeHandler struct{ Svc Service }

// ServeHTTP ダークモード切替
// POST /users/{userID}/preferences/dark-mode
func (h DarkModeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Svc.ToggleDarkMode(r.Context(), r.PathValue("userID"))
	write(w, r, "dark_mode", prefs, err)
}

func write(w http.ResponseWriter, r *http.Request, op string, prefs entity.UserPreferences, err error) {
	if err != nil {
		logging.FromContext(r.Context()).Warn("preference request failed",
			slog.String("op", op),
			slog.Any("error", err))
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, prefs)
}

// Register registers the preference routes with the given mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /users/{userID}/preferences", GetHandler{svc})
	mux.Handle("PUT /users/{userID}/preferences", UpdateHandler{svc})
	mux.Handle("DELETE /users/{userID}/preferences", ResetHandler{svc})
	mux.Handle("POST /users/{userID}/preferences/dark-mode", DarkModeHandler{svc})
}
