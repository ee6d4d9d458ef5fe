package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleParams_Defaults(t *testing.T) {
	var p ArticleParams
	assert.Equal(t, 1, p.PageOrDefault())
	assert.Equal(t, 20, p.PageSizeOrDefault())
	assert.Equal(t, SortPublishedAt, p.SortByOrDefault())

	p = ArticleParams{Page: 3, PageSize: 50, SortBy: SortPopularity}
	assert.Equal(t, 3, p.PageOrDefault())
	assert.Equal(t, 50, p.PageSizeOrDefault())
	assert.Equal(t, SortPopularity, p.SortByOrDefault())
}

func TestArticleParams_CategoryFilter(t *testing.T) {
	tests := []struct {
		name   string
		in     []string
		want   []string
		wantOK bool
	}{
		{name: "none", in: nil, wantOK: false},
		{name: "all first", in: []string{"all", "sports"}, wantOK: false},
		{name: "explicit", in: []string{"sports", "world"}, want: []string{"sports", "world"}, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ArticleParams{Categories: tt.in}.CategoryFilter()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArticleParams_Clone(t *testing.T) {
	p := ArticleParams{Sources: []string{"bbc-news"}, Categories: []string{"world"}}
	c := p.Clone()
	c.Sources[0] = "cnn"
	c.Categories[0] = "sports"
	assert.Equal(t, "bbc-news", p.Sources[0])
	assert.Equal(t, "world", p.Categories[0])
}

func TestArticleParams_Validate(t *testing.T) {
	tests := []struct {
		name      string
		params    ArticleParams
		wantField string
	}{
		{name: "zero value", params: ArticleParams{}},
		{name: "full", params: ArticleParams{Query: "go", Page: 2, PageSize: 100, SortBy: SortRelevancy, From: "2024-01-01", To: "2024-01-31"}},
		{name: "same day", params: ArticleParams{From: "2024-01-01", To: "2024-01-01"}},
		{name: "rfc3339 bound", params: ArticleParams{From: "2024-01-01T00:00:00Z"}},
		{name: "negative page", params: ArticleParams{Page: -1}, wantField: "page"},
		{name: "page size too large", params: ArticleParams{PageSize: 101}, wantField: "pageSize"},
		{name: "bad sort", params: ArticleParams{SortBy: "oldest"}, wantField: "sortBy"},
		{name: "bad from", params: ArticleParams{From: "01/02/2024"}, wantField: "from"},
		{name: "bad to", params: ArticleParams{To: "tomorrow"}, wantField: "to"},
		{name: "from after to", params: ArticleParams{From: "2024-02-01", To: "2024-01-01"}, wantField: "from"},
		{name: "blank source", params: ArticleParams{Sources: []string{" "}}, wantField: "sources"},
		{name: "blank category", params: ArticleParams{Categories: []string{""}}, wantField: "categories"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParams))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestArticleResponse_FailedProviders(t *testing.T) {
	r := ArticleResponse{Sources: []SourceStatus{
		{Provider: ProviderNewsAPI, Status: SourceOK},
		{Provider: ProviderGuardian, Status: SourceFailed},
		{Provider: ProviderNYTimes, Status: SourceEmpty},
	}}
	assert.Equal(t, 1, r.FailedProviders())
	assert.NotNil(t, EmptyResponse().Articles)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https URL", url: "https://newsapi.org/v2"},
		{name: "valid loopback", url: "http://127.0.0.1:8080"},
		{name: "empty URL", url: "", wantErr: true},
		{name: "invalid scheme - ftp", url: "ftp://example.com/feed", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "no scheme", url: "example.com", wantErr: true},
		{name: "URL exceeding maximum length", url: "https://example.com/" + string(make([]byte, 2050)), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserPreferences_Clone(t *testing.T) {
	p := DefaultPreferences("u1")
	p.PreferredSources = append(p.PreferredSources, "bbc-news")
	c := p.Clone()
	c.PreferredSources[0] = "cnn"
	assert.Equal(t, "bbc-news", p.PreferredSources[0])

	var zero UserPreferences
	assert.NotNil(t, zero.Clone().PreferredAuthors)
}
