package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"newshub/internal/domain/entity"
	pgRepo "newshub/internal/infra/adapter/persistence/postgres"
	"newshub/internal/infra/db"
	"newshub/internal/infra/guardian"
	"newshub/internal/infra/newsapi"
	"newshub/internal/infra/nytimes"
	"newshub/internal/infra/provider"
	"newshub/internal/infra/worker"
	"newshub/internal/observability/logging"
	"newshub/internal/observability/metrics"
	"newshub/internal/observability/tracing"
	"newshub/pkg/config"

	hhttp "newshub/internal/handler/http"
	harticle "newshub/internal/handler/http/article"
	"newshub/internal/handler/http/middleware"
	hpref "newshub/internal/handler/http/preference"
	"newshub/internal/handler/http/requestid"
	hsession "newshub/internal/handler/http/session"

	"newshub/internal/usecase/aggregate"
	"newshub/internal/usecase/catalog"
	"newshub/internal/usecase/preference"
	"newshub/internal/usecase/search"
)

func main() {
	loadDotEnv()
	logger := initLogger()

	cfg := config.LoadApp(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	tp := tracing.Setup(config.GetEnvFloat("TRACE_SAMPLE_RATIO", 1))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	database := initDatabase(logger, cfg.DatabaseURL)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
	}

	components, err := setupServer(logger, cfg, database)
	if err != nil {
		logger.Error("failed to set up server", slog.Any("error", err))
		os.Exit(1)
	}
	runServer(logger, cfg, components)
}

// loadDotEnv loads .env when present. Real environment variables win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}
}

// initLogger builds the JSON logger and makes it the default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens Postgres and migrates it. It returns nil when no DSN
// is configured; preferences then live in memory only.
func initDatabase(logger *slog.Logger, dsn string) *sql.DB {
	if dsn == "" {
		logger.Warn("DATABASE_URL not set, preferences will not survive a restart")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, dsn)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// ServerComponents holds what the server needs at runtime and on shutdown.
type ServerComponents struct {
	Handler   http.Handler
	Scheduler *worker.Scheduler
	Sessions  *search.Registry
}

// providerClients builds one HTTP client per upstream provider.
func providerClients(logger *slog.Logger, cfg config.App) (news, guard, nyt *provider.Client, err error) {
	build := func(id entity.ProviderID, s config.ProviderSettings, keyName string, keyIn provider.KeyPlacement) (*provider.Client, error) {
		return provider.New(provider.Config{
			Provider:          id,
			BaseURL:           s.BaseURL,
			APIKey:            s.APIKey,
			KeyName:           keyName,
			KeyIn:             keyIn,
			Timeout:           s.Timeout,
			RequestsPerSecond: s.RequestsPerSecond,
			Burst:             s.Burst,
			UserAgent:         "newshub/" + cfg.Version,
		}, provider.WithLogger(logger))
	}
	if news, err = build(entity.ProviderNewsAPI, cfg.NewsAPI, newsapi.KeyHeader, provider.KeyInHeader); err != nil {
		return nil, nil, nil, err
	}
	if guard, err = build(entity.ProviderGuardian, cfg.Guardian, guardian.KeyParam, provider.KeyInQuery); err != nil {
		return nil, nil, nil, err
	}
	if nyt, err = build(entity.ProviderNYTimes, cfg.NYTimes, nytimes.KeyParam, provider.KeyInQuery); err != nil {
		return nil, nil, nil, err
	}
	return news, guard, nyt, nil
}

// setupServer wires the use cases, routes, middleware and background jobs.
func setupServer(logger *slog.Logger, cfg config.App, database *sql.DB) (*ServerComponents, error) {
	newsClient, guardianClient, nytClient, err := providerClients(logger, cfg)
	if err != nil {
		return nil, err
	}
	newsAdapter := newsapi.New(newsClient)
	guardianAdapter := guardian.New(guardianClient)
	nytAdapter := nytimes.New(nytClient)

	aggSvc := aggregate.NewService(logger, newsAdapter, guardianAdapter, nytAdapter)

	catSvc := catalog.NewService(logger,
		[]catalog.Loader{{
			Provider: entity.ProviderNewsAPI,
			Load: func(ctx context.Context) ([]entity.ReferenceItem, error) {
				return newsAdapter.Sources(ctx, newsapi.SourceFilter{})
			},
		}},
		[]catalog.Loader{
			{Provider: entity.ProviderNYTimes, Load: nytAdapter.Sections},
			{Provider: entity.ProviderGuardian, Load: guardianAdapter.Sections},
		},
	)

	var store preference.Store = preference.NewMemoryStore()
	if database != nil {
		store = pgRepo.NewPreferenceRepo(database)
	}
	prefSvc := preference.NewService(store, logger)
	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := prefSvc.Load(loadCtx); err != nil {
		return nil, err
	}

	sessions := search.NewRegistry(aggSvc, prefSvc, cfg.SessionIdle, logger)

	scheduler, err := setupScheduler(logger, catSvc, sessions)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", &hhttp.HealthHandler{
		DB:        database,
		Providers: []hhttp.ProviderStatuser{newsClient, guardianClient, nytClient},
		Version:   cfg.Version,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	harticle.Register(mux, aggSvc, catSvc)
	hpref.Register(mux, prefSvc)
	hsession.Register(mux, sessions)

	handler, err := applyMiddleware(logger, cfg, mux)
	if err != nil {
		return nil, err
	}
	return &ServerComponents{Handler: handler, Scheduler: scheduler, Sessions: sessions}, nil
}

// setupScheduler registers the catalog refresh and session sweep jobs.
func setupScheduler(logger *slog.Logger, catSvc *catalog.Service, sessions *search.Registry) (*worker.Scheduler, error) {
	wm := worker.NewMetrics(nil)
	wcfg := worker.LoadConfigFromEnv(logger, wm)
	scheduler, err := worker.New(wcfg, logger, wm)
	if err != nil {
		return nil, err
	}

	jobs := []worker.Job{
		{
			Name:     "catalog_refresh",
			Schedule: wcfg.CatalogSchedule,
			Run: func(ctx context.Context) error {
				opts, err := catSvc.Refresh(ctx)
				if err != nil {
					return err
				}
				logger.Info("catalog refreshed",
					slog.Int("sources", len(opts.Sources)),
					slog.Int("categories", len(opts.Categories)))
				return nil
			},
		},
		{
			Name:     "session_sweep",
			Schedule: wcfg.SweepSchedule,
			Run: func(context.Context) error {
				if n := sessions.Sweep(); n > 0 {
					logger.Info("idle sessions removed", slog.Int("removed", n))
				}
				return nil
			},
		},
	}
	for _, j := range jobs {
		if err := scheduler.Add(j); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

// applyMiddleware wraps the mux. Order, outermost first:
// route pattern → recover → request id → CORS → tracing → logging →
// metrics → body limit → request timeout.
func applyMiddleware(logger *slog.Logger, cfg config.App, mux *http.ServeMux) (http.Handler, error) {
	corsCfg := middleware.DefaultCORSConfig(cfg.CORSOrigins)
	corsCfg.Logger = logger
	if err := corsCfg.Validate(); err != nil {
		return nil, err
	}
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsCfg.AllowedOrigins),
		slog.Any("allowed_methods", corsCfg.AllowedMethods))

	return hhttp.Chain(mux,
		hhttp.RoutePattern(mux),
		hhttp.Recover(logger),
		requestid.Middleware,
		middleware.CORS(corsCfg),
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
		hhttp.LimitRequestBody(cfg.MaxBodyBytes),
		hhttp.RequestTimeout(cfg.RequestTimeout),
	), nil
}

// runServer starts the HTTP server and the scheduler and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg config.App, components *ServerComponents) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components.Scheduler.Start()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	// 実行中のリクエストが終わってから取り消す
	cancel()
	if err := components.Scheduler.Stop(shutdownCtx); err != nil {
		logger.Error("worker shutdown failed", slog.Any("error", err))
	}
	metrics.UpdateSessionsActive(0)
	logger.Info("server stopped", slog.Int("open_sessions", components.Sessions.Len()))
}
