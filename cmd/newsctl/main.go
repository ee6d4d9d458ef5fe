// Package main is newsctl, a terminal client for the aggregated news feed.
// It queries the providers directly with the same keys the API server uses.
//
// Usage:
//
//	newsctl search "climate" --sources bbc-news --page-size 10
//	newsctl top --categories technology --output json
//	newsctl filters
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"newshub/internal/domain/entity"
	"newshub/internal/observability/logging"
	"newshub/pkg/config"
)

var (
	outputFormat string
	sources      []string
	categories   []string
	fromDate     string
	toDate       string
	page         int
	pageSize     int
	sortBy       string
)

var rootCmd = &cobra.Command{
	Use:           "newsctl",
	Short:         "Query NewsAPI, the Guardian and the New York Times as one feed",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if outputFormat != "text" && outputFormat != "json" {
			return fmt.Errorf("unknown output format %q (want text or json)", outputFormat)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search every provider and print the merged feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := params(strings.Join(args, " "))
		if err != nil {
			return err
		}
		svc := newClients(cmd.Context()).aggregator
		resp, err := svc.FetchAll(cmd.Context(), p)
		if err != nil {
			return err
		}
		return renderFeed(cmd.OutOrStdout(), outputFormat, resp)
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the current top headlines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := params("")
		if err != nil {
			return err
		}
		svc := newClients(cmd.Context()).aggregator
		resp, err := svc.TopHeadlines(cmd.Context(), p)
		if err != nil {
			return err
		}
		return renderFeed(cmd.OutOrStdout(), outputFormat, resp)
	},
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the sources and categories available for filtering",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := newClients(cmd.Context()).catalog.FilterOptions(cmd.Context())
		if err != nil {
			return err
		}
		return renderFilters(cmd.OutOrStdout(), outputFormat, opts)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text or json")

	for _, c := range []*cobra.Command{searchCmd, topCmd} {
		c.Flags().StringSliceVar(&sources, "sources", nil, "Comma-separated source ids")
		c.Flags().StringSliceVar(&categories, "categories", nil, "Comma-separated categories")
		c.Flags().IntVar(&page, "page", entity.DefaultPage, "Page number")
		c.Flags().IntVar(&pageSize, "page-size", entity.DefaultPageSize, "Articles per page")
	}
	searchCmd.Flags().StringVar(&fromDate, "from", "", "Earliest publication date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&toDate, "to", "", "Latest publication date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&sortBy, "sort", string(entity.SortPublishedAt), "relevancy, popularity or publishedAt")

	rootCmd.AddCommand(searchCmd, topCmd, filtersCmd)
}

// params builds and validates the query from the command-line flags.
func params(query string) (entity.ArticleParams, error) {
	p := entity.ArticleParams{
		Query:      strings.TrimSpace(query),
		Sources:    sources,
		Categories: categories,
		From:       fromDate,
		To:         toDate,
		Page:       page,
		PageSize:   pageSize,
		SortBy:     entity.SortBy(sortBy),
	}
	if err := p.Validate(); err != nil {
		return entity.ArticleParams{}, err
	}
	return p, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}
	// ログは stderr へ。stdout は結果専用
	slog.SetDefault(logging.NewTextLogger(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newClients loads the provider settings and exits when they are unusable.
func newClients(ctx context.Context) *clients {
	logger := slog.Default()
	cfg := config.LoadApp(logger)
	c, err := buildClients(logger, cfg)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build provider clients", slog.Any("error", err))
		os.Exit(1)
	}
	return c
}
