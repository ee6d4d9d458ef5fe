// Package aggregate merges the results of every news provider into one
// feed. Each provider is queried concurrently; a provider that fails is
// replaced by an empty result so the others still reach the caller.
package aggregate

import (
	"errors"
	"fmt"

	"newshub/internal/domain/entity"
)

// Sentinel errors for aggregation use cases.
var (
	// ErrArticleNotFound indicates that no provider returned an article with the requested id.
	ErrArticleNotFound = fmt.Errorf("article: %w", entity.ErrNotFound)

	// ErrInvalidSection indicates an empty section or category name.
	// It is a validation error and matches entity.ErrInvalidParams.
	ErrInvalidSection error = &entity.ValidationError{Field: "section", Message: "section must not be empty"}

	// ErrNoSources indicates the service was built without any provider.
	ErrNoSources = errors.New("no news sources configured")
)
