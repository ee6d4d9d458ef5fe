package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"newshub/internal/domain/entity"
	"newshub/internal/usecase/catalog"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderFeed prints one page of the merged feed followed by a per-provider summary.
func renderFeed(w io.Writer, format string, resp entity.ArticleResponse) error {
	if format == "json" {
		return writeJSON(w, resp)
	}

	if len(resp.Articles) == 0 {
		fmt.Fprintln(w, "No articles found.")
	}
	offset := (max(resp.Page, 1) - 1) * max(resp.PageSize, 0)
	for i, a := range resp.Articles {
		fmt.Fprintf(w, "%3d. %s\n", offset+i+1, a.Title)
		meta := []string{a.Source.Name}
		if author := entity.Deref(a.Author); author != "" {
			meta = append(meta, author)
		}
		if t, ok := a.PublishedTime(); ok {
			meta = append(meta, t.Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(w, "     %s\n", strings.Join(meta, " | "))
		fmt.Fprintf(w, "     %s\n", a.URL)
	}

	fmt.Fprintf(w, "\n%d results", resp.TotalResults)
	for _, s := range resp.Sources {
		fmt.Fprintf(w, "  %s=%s", s.Provider, s.Status)
		if s.ErrorKind != "" {
			fmt.Fprintf(w, "(%s)", s.ErrorKind)
		}
	}
	fmt.Fprintln(w)
	return nil
}

// renderFilters prints the source and category lists.
func renderFilters(w io.Writer, format string, opts catalog.FilterOptions) error {
	if format == "json" {
		return writeJSON(w, opts)
	}
	section := func(title string, items []entity.ReferenceItem) {
		fmt.Fprintf(w, "%s (%d)\n", title, len(items))
		for _, it := range items {
			fmt.Fprintf(w, "  %-28s %-36s %s\n", it.ID, it.Name, it.Provider)
		}
	}
	section("Sources", opts.Sources)
	fmt.Fprintln(w)
	section("Categories", opts.Categories)
	return nil
}
