package provider

import (
	"errors"
	"fmt"

	"newshub/internal/domain/entity"
)

// Kind classifies a provider failure.
type Kind string

// Failure kinds. All of them are absorbed by the aggregator.
const (
	KindTransport   Kind = "transport"
	KindAuth        Kind = "auth"
	KindRateLimit   Kind = "rate_limit"
	KindUpstream    Kind = "upstream"
	KindDecode      Kind = "decode"
	KindCircuitOpen Kind = "circuit_open"
)

// KindPanic labels a panic recovered from inside an adapter.
const KindPanic Kind = "panic"

// ErrMissingAPIKey is returned without any network traffic when a provider has no key configured.
var ErrMissingAPIKey = errors.New("api key not configured")

// Error is a classified provider failure.
type Error struct {
	Provider   entity.ProviderID
	Kind       Kind
	StatusCode int
	// Message is the provider's own error text when the body carried one.
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, or "unknown" when err is
// not a classified provider error. It returns "" for a nil error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return "unknown"
}

// kindForStatus maps a non-2xx status code to a failure kind.
func kindForStatus(code int) Kind {
	switch {
	case code == 401 || code == 403:
		return KindAuth
	case code == 429:
		return KindRateLimit
	default:
		return KindUpstream
	}
}
