package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// ProviderSettings configures one upstream news provider.
type ProviderSettings struct {
	Name    string
	BaseURL string
	APIKey  string
	// APIKeyVar names the variable the key was read from, for startup logs.
	APIKeyVar         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// App is the configuration of the API server and the CLI.
type App struct {
	Addr            string
	Version         string
	DatabaseURL     string
	CORSOrigins     []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	SessionIdle     time.Duration

	NewsAPI  ProviderSettings
	Guardian ProviderSettings
	NYTimes  ProviderSettings
}

// DefaultApp returns the configuration used when no variable is set.
func DefaultApp() App {
	return App{
		Addr:            ":8080",
		Version:         "dev",
		CORSOrigins:     []string{"http://localhost:5173"},
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    1 << 20,
		SessionIdle:     30 * time.Minute,
		NewsAPI: ProviderSettings{
			Name:              "newsapi",
			BaseURL:           "https://newsapi.org/v2",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Guardian: ProviderSettings{
			Name:              "guardian",
			BaseURL:           "https://content.guardianapis.com",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		// NYT allows 5 requests per minute.
		NYTimes: ProviderSettings{
			Name:              "nytimes",
			BaseURL:           "https://api.nytimes.com/svc",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5.0 / 60,
			Burst:             5,
		},
	}
}

// LoadApp reads App from the environment. Invalid values fall back to
// their defaults with a warning; missing API keys are only warned about.
//
// Environment variables:
//   - HTTP_ADDR, VERSION, DATABASE_URL, CORS_ALLOWED_ORIGINS
//   - REQUEST_TIMEOUT (1s-5m), SHUTDOWN_TIMEOUT (1s-1m), MAX_BODY_BYTES
//   - SESSION_IDLE_TIMEOUT (1m-24h)
//   - NEWS_API_KEY / VITE_NEWS_API_KEY, GUARDIAN_API_KEY / VITE_GUARDIAN_API_KEY,
//     NYTIMES_API_KEY / VITE_NY_TIMES_API_KEY
//   - {NEWSAPI,GUARDIAN,NYTIMES}_{BASE_URL,TIMEOUT,RATE_PER_SEC,BURST}
func LoadApp(logger *slog.Logger) App {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultApp()
	cfg := App{
		Addr:            GetEnvString("HTTP_ADDR", def.Addr),
		Version:         GetEnvString("VERSION", def.Version),
		DatabaseURL:     GetEnvString("DATABASE_URL", ""),
		CORSOrigins:     GetEnvStringList("CORS_ALLOWED_ORIGINS", def.CORSOrigins),
		RequestTimeout:  durationInRange(logger, "REQUEST_TIMEOUT", def.RequestTimeout, time.Second, 5*time.Minute),
		ShutdownTimeout: durationInRange(logger, "SHUTDOWN_TIMEOUT", def.ShutdownTimeout, time.Second, time.Minute),
		MaxBodyBytes:    def.MaxBodyBytes,
		SessionIdle:     durationInRange(logger, "SESSION_IDLE_TIMEOUT", def.SessionIdle, time.Minute, 24*time.Hour),
	}
	if n := GetEnvInt("MAX_BODY_BYTES", int(def.MaxBodyBytes)); n > 0 {
		cfg.MaxBodyBytes = int64(n)
	} else {
		logger.Warn("invalid MAX_BODY_BYTES, using default", slog.Int("value", n))
	}

	cfg.NewsAPI = loadProvider(logger, "NEWSAPI", def.NewsAPI, "NEWS_API_KEY", "VITE_NEWS_API_KEY")
	cfg.Guardian = loadProvider(logger, "GUARDIAN", def.Guardian, "GUARDIAN_API_KEY", "VITE_GUARDIAN_API_KEY")
	cfg.NYTimes = loadProvider(logger, "NYTIMES", def.NYTimes, "NYTIMES_API_KEY", "VITE_NY_TIMES_API_KEY")
	return cfg
}

func loadProvider(logger *slog.Logger, prefix string, def ProviderSettings, keyVars ...string) ProviderSettings {
	p := def
	p.BaseURL = GetEnvString(prefix+"_BASE_URL", def.BaseURL)
	if err := validateBaseURL(p.BaseURL); err != nil {
		logger.Warn("invalid provider base url, using default",
			slog.String("provider", p.Name),
			slog.String("error", err.Error()))
		p.BaseURL = def.BaseURL
	}
	p.Timeout = durationInRange(logger, prefix+"_TIMEOUT", def.Timeout, time.Second, 2*time.Minute)
	if p.RequestsPerSecond = GetEnvFloat(prefix+"_RATE_PER_SEC", def.RequestsPerSecond); p.RequestsPerSecond < 0 {
		logger.Warn("negative provider rate, using default", slog.String("provider", p.Name))
		p.RequestsPerSecond = def.RequestsPerSecond
	}
	if p.Burst = GetEnvInt(prefix+"_BURST", def.Burst); p.Burst < 0 {
		logger.Warn("negative provider burst, using default", slog.String("provider", p.Name))
		p.Burst = def.Burst
	}

	p.APIKey, p.APIKeyVar = GetEnvFirst(keyVars...)
	if p.APIKey == "" {
		// キー未設定でも起動はする。該当プロバイダは auth エラー扱い
		logger.Warn("provider API key not set, provider will report auth failures",
			slog.String("provider", p.Name),
			slog.Any("variables", keyVars))
	} else if p.APIKeyVar != keyVars[0] {
		logger.Info("provider API key read from fallback variable",
			slog.String("provider", p.Name),
			slog.String("variable", p.APIKeyVar))
	}
	return p
}

func durationInRange(logger *slog.Logger, key string, def, min, max time.Duration) time.Duration {
	d := GetEnvDuration(key, def)
	if err := ValidateDurationRange(d, min, max); err != nil {
		logger.Warn("configuration fallback applied",
			slog.String("env_key", key),
			slog.String("default_value", def.String()),
			slog.String("error", err.Error()))
		return def
	}
	return d
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// Validate checks the configuration and reports every problem at once.
func (a App) Validate() error {
	var errs []error
	if a.Addr == "" {
		errs = append(errs, errors.New("addr: must not be empty"))
	}
	for name, d := range map[string]time.Duration{
		"request timeout":  a.RequestTimeout,
		"shutdown timeout": a.ShutdownTimeout,
		"session idle":     a.SessionIdle,
	} {
		if err := ValidatePositiveDuration(d); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if a.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max body bytes: must be positive"))
	}
	for _, p := range []ProviderSettings{a.NewsAPI, a.Guardian, a.NYTimes} {
		if err := validateBaseURL(p.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("%s base url: %w", p.Name, err))
		}
		if p.RequestsPerSecond < 0 || p.Burst < 0 {
			errs = append(errs, fmt.Errorf("%s rate limit: must not be negative", p.Name))
		}
	}
	return errors.Join(errs...)
}
