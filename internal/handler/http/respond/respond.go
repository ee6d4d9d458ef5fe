// Package respond writes JSON responses and maps domain errors to status
// codes without leaking internal details.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"newshub/internal/domain/entity"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// ヘッダー送信済みなのでログのみ
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// SafeError writes err for a 4xx code as-is. For 5xx codes the details are
// logged and the client gets a generic message.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError {
		JSON(w, code, ErrorBody{Error: err.Error()})
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, ErrorBody{Error: "internal server error"})
}

// StatusFor maps an error to the HTTP status it should produce.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// クライアント切断。ステータスは記録用
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the response StatusFor chooses. Validation errors carry
// the offending field.
func FromError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	code := StatusFor(err)
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		JSON(w, code, ErrorBody{Error: ve.Message, Field: ve.Field})
	case code == http.StatusNotFound:
		JSON(w, code, ErrorBody{Error: "not found"})
	case code == 499:
		w.WriteHeader(code)
	default:
		SafeError(w, code, err)
	}
}
