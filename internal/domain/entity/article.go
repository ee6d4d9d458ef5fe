// Package entity defines the core domain types of the aggregation service.
// It contains the normalized Article shared by every provider, the
// ArticleParams request descriptor, the aggregated ArticleResponse and the
// reference data used by filter UIs, along with their validation rules.
package entity

import (
	"strings"
	"time"
)

// ProviderID identifies one of the upstream news providers.
type ProviderID string

// Known providers.
const (
	ProviderNewsAPI  ProviderID = "newsapi"
	ProviderGuardian ProviderID = "guardian"
	ProviderNYTimes  ProviderID = "nytimes"
)

// String returns the provider key.
func (p ProviderID) String() string {
	return string(p)
}

// IDPrefix returns the prefix every article id from this provider carries.
func (p ProviderID) IDPrefix() string {
	return string(p) + "-"
}

// SourceRef names the publication an article came from.
// ID is nil when the provider does not expose a stable source identifier.
type SourceRef struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Article is the normalized, provider-independent news article.
// Nullable fields are pointers and serialize as JSON null when absent.
// Articles are values: they are built once per request and never mutated.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Content     *string   `json:"content"`
	Author      *string   `json:"author"`
	PublishedAt string    `json:"publishedAt"`
	URL         string    `json:"url"`
	URLToImage  *string   `json:"urlToImage"`
	Source      SourceRef `json:"source"`
	Category    *string   `json:"category"`
}

// publishedAtLayouts lists the timestamp shapes the providers are known to emit.
// NYT article search uses a numeric zone offset without a colon.
var publishedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// PublishedTime parses PublishedAt. The boolean is false when the value
// matches none of the known layouts.
func (a Article) PublishedTime() (time.Time, bool) {
	return ParseTimestamp(a.PublishedAt)
}

// ParseTimestamp parses an ISO-8601 style timestamp as emitted by the providers.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WithProviderPrefix returns a copy of the article whose ID carries the
// provider prefix. IDs that already carry it are left untouched.
func (a Article) WithProviderPrefix(p ProviderID) Article {
	if !strings.HasPrefix(a.ID, p.IDPrefix()) {
		a.ID = p.IDPrefix() + a.ID
	}
	return a
}

// NullableString returns nil for an empty string and a pointer to s otherwise.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringPtr returns a pointer to s, even when s is empty.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
