// Package guardian adapts the Guardian Content API to the normalized article model.
package guardian

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"newshub/internal/domain/entity"
)

// DefaultBaseURL is the production endpoint.
const DefaultBaseURL = "https://content.guardianapis.com"

// KeyParam carries the API key.
const KeyParam = "api-key"

const showFields = "headline,trailText,byline,thumbnail,body"

var guardianSource = entity.SourceRef{ID: entity.StringPtr("the-guardian"), Name: "The Guardian"}

// JSONGetter performs one GET and decodes the JSON body.
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// Client talks to the Guardian Content API.
type Client struct {
	api JSONGetter
}

// New returns a Guardian adapter.
func New(api JSONGetter) *Client {
	return &Client{api: api}
}

// Provider returns entity.ProviderGuardian.
func (c *Client) Provider() entity.ProviderID {
	return entity.ProviderGuardian
}

type fieldsDTO struct {
	Headline  string `json:"headline"`
	TrailText string `json:"trailText"`
	Byline    string `json:"byline"`
	Thumbnail string `json:"thumbnail"`
	Body      string `json:"body"`
}

type resultDTO struct {
	ID                 string     `json:"id"`
	Type               string     `json:"type"`
	SectionID          string     `json:"sectionId"`
	SectionName        string     `json:"sectionName"`
	WebPublicationDate string     `json:"webPublicationDate"`
	WebTitle           string     `json:"webTitle"`
	WebURL             string     `json:"webUrl"`
	Fields             *fieldsDTO `json:"fields"`
}

type searchResponse struct {
	Response struct {
		Status      string      `json:"status"`
		Total       int         `json:"total"`
		CurrentPage int         `json:"currentPage"`
		Pages       int         `json:"pages"`
		Results     []resultDTO `json:"results"`
	} `json:"response"`
}

type sectionsResponse struct {
	Response struct {
		Status  string `json:"status"`
		Results []struct {
			ID       string `json:"id"`
			WebTitle string `json:"webTitle"`
		} `json:"results"`
	} `json:"response"`
}

func baseQuery(p entity.ArticleParams) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.PageOrDefault()))
	q.Set("page-size", strconv.Itoa(p.PageSizeOrDefault()))
	q.Set("show-fields", showFields)
	q.Set("order-by", "newest")
	return q
}

// SearchQuery builds the /search query string. Multiple sections are OR-ed with "|".
func SearchQuery(p entity.ArticleParams) url.Values {
	q := baseQuery(p)
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if cats, ok := p.CategoryFilter(); ok {
		q.Set("section", strings.Join(cats, "|"))
	}
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	return q
}

// SearchArticles queries /search.
func (c *Client) SearchArticles(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error) {
	return c.search(ctx, SearchQuery(p))
}

// BrowseSection returns the newest articles of one section. Only paging is
// taken from p.
func (c *Client) BrowseSection(ctx context.Context, section string, p entity.ArticleParams) (entity.ArticleResponse, error) {
	q := baseQuery(p)
	q.Set("section", section)
	return c.search(ctx, q)
}

func (c *Client) search(ctx context.Context, q url.Values) (entity.ArticleResponse, error) {
	var resp searchResponse
	if err := c.api.GetJSON(ctx, "/search", q, &resp); err != nil {
		return entity.ArticleResponse{}, fmt.Errorf("guardian /search: %w", err)
	}
	out := entity.ArticleResponse{
		Articles:     make([]entity.Article, 0, len(resp.Response.Results)),
		TotalResults: resp.Response.Total,
	}
	for _, r := range resp.Response.Results {
		out.Articles = append(out.Articles, mapResult(r))
	}
	return out, nil
}

// Sections lists the Guardian sections as reference items.
func (c *Client) Sections(ctx context.Context) ([]entity.ReferenceItem, error) {
	var resp sectionsResponse
	if err := c.api.GetJSON(ctx, "/sections", nil, &resp); err != nil {
		return nil, fmt.Errorf("guardian /sections: %w", err)
	}
	items := make([]entity.ReferenceItem, 0, len(resp.Response.Results))
	for _, s := range resp.Response.Results {
		items = append(items, entity.ReferenceItem{ID: s.ID, Name: s.WebTitle, Provider: entity.ProviderGuardian})
	}
	return items, nil
}

// mapResult converts one search result. Optional fields map to nil when
// absent or empty; the id is the native Guardian path id.
func mapResult(r resultDTO) entity.Article {
	var f fieldsDTO
	if r.Fields != nil {
		f = *r.Fields
	}
	src := guardianSource
	src.ID = entity.StringPtr(*guardianSource.ID)
	return entity.Article{
		ID:          r.ID,
		Title:       r.WebTitle,
		Description: entity.NullableString(f.TrailText),
		Content:     entity.NullableString(f.Body),
		Author:      entity.NullableString(f.Byline),
		PublishedAt: r.WebPublicationDate,
		URL:         r.WebURL,
		URLToImage:  entity.NullableString(f.Thumbnail),
		Source:      src,
		Category:    entity.NullableString(r.SectionName),
	}
}
