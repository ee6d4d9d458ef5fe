package entity

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// maxURLLength defines the maximum allowed length for configured URLs.
const maxURLLength = 2048

// maxQueryLength bounds the free-text query forwarded to the providers.
const maxQueryLength = 500

// dateLayouts are the accepted shapes for From and To.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate parses a From/To bound.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Validate checks the query for caller errors. Every returned error
// matches ErrInvalidParams with errors.Is.
func (p ArticleParams) Validate() error {
	if p.Page < 0 {
		return &ValidationError{Field: "page", Message: "page must be at least 1"}
	}
	if p.PageSize < 0 || p.PageSize > MaxPageSize {
		return &ValidationError{
			Field:   "pageSize",
			Message: fmt.Sprintf("pageSize must be between 1 and %d", MaxPageSize),
		}
	}
	if p.SortBy != "" && !p.SortBy.IsValid() {
		return &ValidationError{Field: "sortBy", Message: fmt.Sprintf("unsupported sort order %q", p.SortBy)}
	}
	if len(p.Query) > maxQueryLength {
		return &ValidationError{
			Field:   "q",
			Message: fmt.Sprintf("q must not exceed %d characters", maxQueryLength),
		}
	}

	var from, to time.Time
	var err error
	if p.From != "" {
		if from, err = ParseDate(p.From); err != nil {
			return &ValidationError{Field: "from", Message: "from must be YYYY-MM-DD"}
		}
	}
	if p.To != "" {
		if to, err = ParseDate(p.To); err != nil {
			return &ValidationError{Field: "to", Message: "to must be YYYY-MM-DD"}
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return &ValidationError{Field: "from", Message: "from must not be after to"}
	}

	for _, s := range p.Sources {
		if strings.TrimSpace(s) == "" {
			return &ValidationError{Field: "sources", Message: "source ids must not be empty"}
		}
	}
	for _, c := range p.Categories {
		if strings.TrimSpace(c) == "" {
			return &ValidationError{Field: "categories", Message: "categories must not be empty"}
		}
	}
	return nil
}

// ValidateURL validates the format of a configured provider base URL.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a valid host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	// HTTPまたはHTTPSスキームのみ許可
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}
