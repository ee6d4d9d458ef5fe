package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"newshub/internal/domain/entity"
)

// DecodeJSON decodes the request body into v. Unknown fields, trailing
// data and oversized bodies are reported as validation errors.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &entity.ValidationError{Field: "body", Message: "request body too large"}
		case errors.Is(err, io.EOF):
			return &entity.ValidationError{Field: "body", Message: "request body is required"}
		default:
			return &entity.ValidationError{Field: "body", Message: "malformed JSON: " + err.Error()}
		}
	}
	if dec.More() {
		return &entity.ValidationError{Field: "body", Message: "unexpected data after JSON object"}
	}
	return nil
}
