package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/provider"
)

func TestFindArticle(t *testing.T) {
	world := entity.StringPtr("World news")
	guardian := []entity.Article{
		{ID: "world/1", Title: "One", Category: world, Source: entity.SourceRef{Name: "The Guardian"},
			Content: entity.StringPtr("<p>Counting <b>continues</b> overnight.</p>"), PublishedAt: "2024-03-01T10:00:00Z"},
		{ID: "world/2", Category: world, Source: entity.SourceRef{Name: "The Guardian"}, PublishedAt: "2024-03-01T09:00:00Z"},
	}
	nyt := []entity.Article{
		{ID: "n1", Category: world, Source: entity.SourceRef{Name: "The New York Times"}, PublishedAt: "2024-03-01T11:00:00Z"},
		{ID: "n2", Category: entity.StringPtr("Arts"), Source: entity.SourceRef{Name: "The New York Times"}, PublishedAt: "2024-03-01T08:00:00Z"},
		{ID: "n3", Category: world, Source: entity.SourceRef{Name: "The New York Times"}, PublishedAt: "2024-03-01T07:00:00Z"},
	}
	news := []entity.Article{{ID: "newsapi-x", Source: entity.SourceRef{Name: "BBC News"}, PublishedAt: "2024-03-01T12:00:00Z"}}

	gSrc := ok(entity.ProviderGuardian, guardian, 2)
	svc := NewService(nil,
		ok(entity.ProviderNewsAPI, news, 1),
		gSrc,
		ok(entity.ProviderNYTimes, nyt, 3),
	)

	d, err := svc.FindArticle(context.Background(), "guardian-world/1")
	require.NoError(t, err)
	assert.Equal(t, "guardian-world/1", d.Article.ID)
	assert.Equal(t, "Counting continues overnight.", d.PlainText)
	assert.Equal(t, 3, d.WordCount)
	assert.Equal(t, 1, d.ReadingMinutes)

	ids := make([]string, 0, len(d.Related))
	for _, r := range d.Related {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"guardian-world/2", "nytimes-n1", "nytimes-n3"}, ids)

	p := gSrc.lastParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PageSize)
}

func TestFindArticle_NullCategoriesDoNotRelate(t *testing.T) {
	svc := NewService(nil, ok(entity.ProviderNewsAPI, []entity.Article{
		{ID: "newsapi-a", Source: entity.SourceRef{Name: "BBC News"}},
		{ID: "newsapi-b", Source: entity.SourceRef{Name: "CNN"}},
	}, 2))

	d, err := svc.FindArticle(context.Background(), "newsapi-a")
	require.NoError(t, err)
	assert.Empty(t, d.Related)
	assert.NotNil(t, d.Related)
}

func TestFindArticle_NotFound(t *testing.T) {
	svc := NewService(nil,
		failing(entity.ProviderNewsAPI, provider.KindRateLimit),
		ok(entity.ProviderGuardian, nil, 0),
	)

	_, err := svc.FindArticle(context.Background(), "guardian-missing")
	assert.ErrorIs(t, err, ErrArticleNotFound)

	_, err = svc.FindArticle(context.Background(), "")
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestBestText_FallsBackToDescription(t *testing.T) {
	a := entity.Article{Description: entity.StringPtr("Short   summary")}
	assert.Equal(t, "Short summary", bestText(a))
	assert.Equal(t, "", bestText(entity.Article{}))
}
