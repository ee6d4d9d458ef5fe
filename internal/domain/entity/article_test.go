package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   time.Time
		wantOK bool
	}{
		{name: "rfc3339 utc", in: "2024-03-01T10:00:00Z", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), wantOK: true},
		{name: "rfc3339 nano", in: "2024-03-01T10:00:00.123Z", want: time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC), wantOK: true},
		{name: "offset without colon", in: "2024-03-01T12:00:00+0200", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), wantOK: true},
		{name: "date only", in: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "surrounding spaces", in: " 2024-03-01 ", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "empty", in: "", wantOK: false},
		{name: "garbage", in: "yesterday", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			}
		})
	}
}

func TestArticle_WithProviderPrefix(t *testing.T) {
	a := Article{ID: "world/2024/mar/01/story"}

	got := a.WithProviderPrefix(ProviderGuardian)
	assert.Equal(t, "guardian-world/2024/mar/01/story", got.ID)
	assert.Equal(t, "world/2024/mar/01/story", a.ID, "receiver must not change")

	again := got.WithProviderPrefix(ProviderGuardian)
	assert.Equal(t, got.ID, again.ID)

	pre := Article{ID: "newsapi-story.html"}
	assert.Equal(t, "newsapi-story.html", pre.WithProviderPrefix(ProviderNewsAPI).ID)
}

func TestArticle_JSONNulls(t *testing.T) {
	a := Article{
		ID:          "nytimes-1",
		Title:       "Title",
		PublishedAt: "2024-03-01T10:00:00Z",
		URL:         "https://example.com",
		Source:      SourceRef{Name: "The New York Times"},
	}
	b, err := json.Marshal(a)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"description", "content", "author", "urlToImage", "category"} {
		v, ok := m[k]
		assert.True(t, ok, "key %s must be present", k)
		assert.Nil(t, v, "key %s must be null", k)
	}
	src := m["source"].(map[string]any)
	assert.Nil(t, src["id"])
}

func TestNullableString(t *testing.T) {
	assert.Nil(t, NullableString(""))
	require.NotNil(t, NullableString("x"))
	assert.Equal(t, "x", *NullableString("x"))
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "y", Deref(StringPtr("y")))
}
