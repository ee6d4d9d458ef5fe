// Package newsapi adapts the NewsAPI.org v2 endpoints to the normalized
// article model.
package newsapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"newshub/internal/domain/entity"
)

// DefaultBaseURL is the production endpoint.
const DefaultBaseURL = "https://newsapi.org/v2"

// KeyHeader carries the API key.
const KeyHeader = "X-Api-Key"

// JSONGetter performs one GET and decodes the JSON body.
// *provider.Client satisfies it.
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// Client talks to NewsAPI through a JSONGetter.
type Client struct {
	api   JSONGetter
	newID func() string
}

// New returns a NewsAPI adapter.
func New(api JSONGetter) *Client {
	return &Client{api: api, newID: randomToken}
}

// Provider returns entity.ProviderNewsAPI.
func (c *Client) Provider() entity.ProviderID {
	return entity.ProviderNewsAPI
}

type sourceDTO struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type articleDTO struct {
	Source      sourceDTO `json:"source"`
	Author      *string   `json:"author"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	URLToImage  *string   `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
	Content     *string   `json:"content"`
}

type articlesResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []articleDTO `json:"articles"`
}

type sourcesResponse struct {
	Status  string `json:"status"`
	Sources []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Language string `json:"language"`
		Country  string `json:"country"`
	} `json:"sources"`
}

// pagingQuery holds the parameters shared by /everything and /top-headlines.
func pagingQuery(p entity.ArticleParams) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.PageOrDefault()))
	q.Set("pageSize", strconv.Itoa(p.PageSizeOrDefault()))
	q.Set("sortBy", string(p.SortByOrDefault()))
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if len(p.Sources) > 0 {
		q.Set("sources", strings.Join(p.Sources, ","))
	}
	return q
}

// EverythingQuery builds the /everything query string.
func EverythingQuery(p entity.ArticleParams) url.Values {
	q := pagingQuery(p)
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	return q
}

// TopHeadlinesQuery builds the /top-headlines query string.
// NewsAPI accepts a single category per request, so only the first is sent.
func TopHeadlinesQuery(p entity.ArticleParams) url.Values {
	q := pagingQuery(p)
	if cats, ok := p.CategoryFilter(); ok {
		q.Set("category", cats[0])
	}
	return q
}

// SearchArticles queries /everything.
func (c *Client) SearchArticles(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error) {
	return c.articles(ctx, "/everything", EverythingQuery(p))
}

// TopHeadlines queries /top-headlines.
func (c *Client) TopHeadlines(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error) {
	return c.articles(ctx, "/top-headlines", TopHeadlinesQuery(p))
}

// BrowseSection returns the top headlines of one category.
func (c *Client) BrowseSection(ctx context.Context, section string, p entity.ArticleParams) (entity.ArticleResponse, error) {
	p = p.Clone()
	p.Categories = []string{section}
	return c.TopHeadlines(ctx, p)
}

func (c *Client) articles(ctx context.Context, path string, q url.Values) (entity.ArticleResponse, error) {
	var resp articlesResponse
	if err := c.api.GetJSON(ctx, path, q, &resp); err != nil {
		return entity.ArticleResponse{}, fmt.Errorf("newsapi %s: %w", path, err)
	}
	out := entity.ArticleResponse{
		Articles:     make([]entity.Article, 0, len(resp.Articles)),
		TotalResults: resp.TotalResults,
	}
	for _, a := range resp.Articles {
		out.Articles = append(out.Articles, mapArticle(a, c.newID))
	}
	return out, nil
}

// SourceFilter narrows the /sources listing. Empty fields are not sent.
type SourceFilter struct {
	Category string
	Language string
	Country  string
}

// Sources lists the publications NewsAPI can filter on.
func (c *Client) Sources(ctx context.Context, f SourceFilter) ([]entity.ReferenceItem, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Language != "" {
		q.Set("language", f.Language)
	}
	if f.Country != "" {
		q.Set("country", f.Country)
	}

	var resp sourcesResponse
	if err := c.api.GetJSON(ctx, "/sources", q, &resp); err != nil {
		return nil, fmt.Errorf("newsapi /sources: %w", err)
	}
	items := make([]entity.ReferenceItem, 0, len(resp.Sources))
	for _, s := range resp.Sources {
		items = append(items, entity.ReferenceItem{ID: s.ID, Name: s.Name, Provider: entity.ProviderNewsAPI})
	}
	return items, nil
}

// mapArticle converts one NewsAPI article. The id is the last path segment
// of the article URL; newID supplies a token when that segment is empty.
// NewsAPI articles carry no category.
func mapArticle(a articleDTO, newID func() string) entity.Article {
	segment := a.URL[strings.LastIndex(a.URL, "/")+1:]
	if segment == "" {
		segment = newID()
	}
	return entity.Article{
		ID:          entity.ProviderNewsAPI.IDPrefix() + segment,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Author:      a.Author,
		PublishedAt: a.PublishedAt,
		URL:         a.URL,
		URLToImage:  a.URLToImage,
		Source:      entity.SourceRef{ID: a.Source.ID, Name: a.Source.Name},
		Category:    nil,
	}
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}
