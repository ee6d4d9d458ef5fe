// Package nytimes adapts the New York Times Article Search and Top Stories
// APIs to the normalized article model.
package nytimes

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"newshub/internal/domain/entity"
)

// DefaultBaseURL is the production endpoint.
const DefaultBaseURL = "https://api.nytimes.com/svc"

// KeyParam carries the API key.
const KeyParam = "api-key"

const (
	searchPath   = "/search/v2/articlesearch.json"
	searchFields = "headline,abstract,web_url,pub_date,byline,multimedia,lead_paragraph,section_name,_id,uri"
	imageBaseURL = "https://www.nytimes.com/"
)

// ErrInvalidSection is returned for a section name that cannot be a Top Stories path segment.
var ErrInvalidSection = errors.New("invalid nytimes section")

var sectionPattern = regexp.MustCompile(`^[a-z][a-z-]*$`)

var whitespace = regexp.MustCompile(`\s+`)

func nytSource() entity.SourceRef {
	return entity.SourceRef{ID: entity.StringPtr("new-york-times"), Name: "The New York Times"}
}

// JSONGetter performs one GET and decodes the JSON body.
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// Client talks to the NYT APIs.
type Client struct {
	api JSONGetter
}

// New returns a New York Times adapter.
func New(api JSONGetter) *Client {
	return &Client{api: api}
}

// Provider returns entity.ProviderNYTimes.
func (c *Client) Provider() entity.ProviderID {
	return entity.ProviderNYTimes
}

type multimediaDTO struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	URL     string `json:"url"`
}

type docDTO struct {
	ID            string          `json:"_id"`
	URI           string          `json:"uri"`
	Abstract      string          `json:"abstract"`
	WebURL        string          `json:"web_url"`
	LeadParagraph string          `json:"lead_paragraph"`
	Multimedia    []multimediaDTO `json:"multimedia"`
	Headline      struct {
		Main string `json:"main"`
	} `json:"headline"`
	PubDate string `json:"pub_date"`
	Byline  *struct {
		Original *string `json:"original"`
	} `json:"byline"`
	SectionName string `json:"section_name"`
}

type searchResponse struct {
	Status   string `json:"status"`
	Response struct {
		Docs []docDTO `json:"docs"`
		Meta struct {
			Hits   int `json:"hits"`
			Offset int `json:"offset"`
		} `json:"meta"`
	} `json:"response"`
}

type topStoryDTO struct {
	Section       string `json:"section"`
	Title         string `json:"title"`
	Abstract      string `json:"abstract"`
	URL           string `json:"url"`
	URI           string `json:"uri"`
	Byline        string `json:"byline"`
	PublishedDate string `json:"published_date"`
	Multimedia    []struct {
		URL string `json:"url"`
	} `json:"multimedia"`
}

type topStoriesResponse struct {
	Status     string        `json:"status"`
	Section    string        `json:"section"`
	NumResults int           `json:"num_results"`
	Results    []topStoryDTO `json:"results"`
}

// formatDate renders a From/To bound as YYYYMMDD. Unparseable input yields "".
func formatDate(s string) string {
	t, err := entity.ParseDate(s)
	if err != nil {
		return ""
	}
	return t.Format("20060102")
}

// SearchQuery builds the article search query string. The page number is
// passed through unchanged.
func SearchQuery(p entity.ArticleParams) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.PageOrDefault()))
	q.Set("sort", "newest")
	q.Set("fl", searchFields)
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if cats, ok := p.CategoryFilter(); ok {
		quoted := make([]string, len(cats))
		for i, c := range cats {
			quoted[i] = "\"" + c + "\""
		}
		q.Set("fq", "section_name:("+strings.Join(quoted, " OR ")+")")
	}
	if d := formatDate(p.From); p.From != "" && d != "" {
		q.Set("begin_date", d)
	}
	if d := formatDate(p.To); p.To != "" && d != "" {
		q.Set("end_date", d)
	}
	return q
}

// SearchArticles queries the Article Search API.
func (c *Client) SearchArticles(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error) {
	var resp searchResponse
	if err := c.api.GetJSON(ctx, searchPath, SearchQuery(p), &resp); err != nil {
		return entity.ArticleResponse{}, fmt.Errorf("nytimes article search: %w", err)
	}
	out := entity.ArticleResponse{
		Articles:     make([]entity.Article, 0, len(resp.Response.Docs)),
		TotalResults: resp.Response.Meta.Hits,
	}
	for _, d := range resp.Response.Docs {
		out.Articles = append(out.Articles, mapDoc(d))
	}
	return out, nil
}

// TopStories returns the current top stories of a section. The Top Stories
// API has no paging, so totalResults is the number of stories returned.
func (c *Client) TopStories(ctx context.Context, section string) (entity.ArticleResponse, error) {
	if !sectionPattern.MatchString(section) {
		return entity.ArticleResponse{}, fmt.Errorf("%w: %q", ErrInvalidSection, section)
	}
	var resp topStoriesResponse
	if err := c.api.GetJSON(ctx, "/topstories/v2/"+section+".json", nil, &resp); err != nil {
		return entity.ArticleResponse{}, fmt.Errorf("nytimes top stories: %w", err)
	}
	out := entity.ArticleResponse{Articles: make([]entity.Article, 0, len(resp.Results))}
	for _, s := range resp.Results {
		out.Articles = append(out.Articles, mapTopStory(s))
	}
	out.TotalResults = len(out.Articles)
	return out, nil
}

// BrowseSection returns the top stories of one section. Paging is applied
// by the aggregator after the merge.
func (c *Client) BrowseSection(ctx context.Context, section string, _ entity.ArticleParams) (entity.ArticleResponse, error) {
	return c.TopStories(ctx, section)
}

// Sections returns the static section list.
func (c *Client) Sections(_ context.Context) ([]entity.ReferenceItem, error) {
	return Sections()
}

func lastSegment(s string) string {
	return s[strings.LastIndex(s, "/")+1:]
}

// stripBy removes the first "By " from a byline.
func stripBy(s string) string {
	return strings.Replace(s, "By ", "", 1)
}

// mapDoc converts one Article Search document.
func mapDoc(d docDTO) entity.Article {
	id := lastSegment(d.URI)
	if id == "" {
		id = d.ID
	}

	var author *string
	if d.Byline != nil && d.Byline.Original != nil && *d.Byline.Original != "" {
		author = entity.StringPtr(stripBy(*d.Byline.Original))
	}

	var image *string
	for _, m := range d.Multimedia {
		if m.Type == "image" && m.Subtype == "xlarge" {
			image = entity.StringPtr(imageBaseURL + m.URL)
			break
		}
	}

	return entity.Article{
		ID:          id,
		Title:       d.Headline.Main,
		Description: entity.NullableString(d.Abstract),
		Content:     entity.NullableString(d.LeadParagraph),
		Author:      author,
		PublishedAt: d.PubDate,
		URL:         d.WebURL,
		URLToImage:  image,
		Source:      nytSource(),
		Category:    entity.NullableString(d.SectionName),
	}
}

// mapTopStory converts one Top Stories result. Stories without a uri get an
// id derived from the title.
func mapTopStory(s topStoryDTO) entity.Article {
	id := lastSegment(s.URI)
	if id == "" {
		id = "nyt-" + strings.ToLower(whitespace.ReplaceAllString(s.Title, "-"))
	}

	var image *string
	if len(s.Multimedia) > 0 {
		image = entity.NullableString(s.Multimedia[0].URL)
	}

	return entity.Article{
		ID:          id,
		Title:       s.Title,
		Description: entity.NullableString(s.Abstract),
		Content:     entity.NullableString(s.Abstract),
		Author:      entity.NullableString(stripBy(s.Byline)),
		PublishedAt: s.PublishedDate,
		URL:         s.URL,
		URLToImage:  image,
		Source:      nytSource(),
		Category:    entity.NullableString(s.Section),
	}
}
