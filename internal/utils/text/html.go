package text

import (
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// wordsPerMinute is the reading speed used for estimates.
const wordsPerMinute = 200

// PlainText strips markup from an HTML fragment, dropping script and style
// elements and collapsing whitespace. Plain input is returned normalized.
func PlainText(html string) (string, error) {
	if !strings.ContainsAny(html, "<&") {
		return strings.Join(strings.Fields(html), " "), nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	// ブロック要素の境界で単語が連結しないようにする
	doc.Find("p, br, li, h1, h2, h3, h4, h5, h6, div, blockquote, figcaption").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingMinutes estimates reading time in whole minutes. Any non-empty
// text takes at least one minute.
func ReadingMinutes(text string) int {
	words := WordCount(text)
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}
