// Package worker runs the periodic background jobs of the API server:
// refreshing the filter catalog and sweeping idle search sessions.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newshub/pkg/config"
)

// Config holds the job schedules.
//
// Schedules accept five-field cron expressions or descriptors such as
// "@every 6h". Timezone is an IANA name and applies to cron expressions.
type Config struct {
	CatalogSchedule string
	SweepSchedule   string
	Timezone        string
	// JobTimeout bounds one run of any job.
	JobTimeout time.Duration
}

// DefaultConfig returns the schedules used when no variable is set.
func DefaultConfig() Config {
	return Config{
		CatalogSchedule: "0 */6 * * *",
		SweepSchedule:   "@every 5m",
		Timezone:        "UTC",
		JobTimeout:      2 * time.Minute,
	}
}

// Validate checks every field and reports all problems together.
func (c Config) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CatalogSchedule); err != nil {
		errs = append(errs, fmt.Errorf("catalog schedule: %w", err))
	}
	if err := config.ValidateCronSchedule(c.SweepSchedule); err != nil {
		errs = append(errs, fmt.Errorf("sweep schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDurationRange(c.JobTimeout, time.Second, 30*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv reads Config from the environment. It never fails:
// each invalid value is replaced by its default, logged and counted.
//
// Environment variables:
//   - CATALOG_REFRESH_SCHEDULE (default "0 */6 * * *")
//   - SESSION_SWEEP_SCHEDULE (default "@every 5m")
//   - WORKER_TIMEZONE (default "UTC")
//   - WORKER_JOB_TIMEOUT (default 2m, range 1s-30m)
func LoadConfigFromEnv(logger *slog.Logger, m *Metrics) Config {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	cfg := def
	fallback := false

	apply := func(field, key, invalid string, err error) {
		fallback = true
		m.RecordFallback(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("env_key", key),
			slog.String("invalid_value", invalid),
			slog.String("error", err.Error()))
	}

	if v := config.GetEnvString("CATALOG_REFRESH_SCHEDULE", def.CatalogSchedule); v != def.CatalogSchedule {
		if err := config.ValidateCronSchedule(v); err != nil {
			apply("catalog_schedule", "CATALOG_REFRESH_SCHEDULE", v, err)
		} else {
			cfg.CatalogSchedule = v
		}
	}
	if v := config.GetEnvString("SESSION_SWEEP_SCHEDULE", def.SweepSchedule); v != def.SweepSchedule {
		if err := config.ValidateCronSchedule(v); err != nil {
			apply("sweep_schedule", "SESSION_SWEEP_SCHEDULE", v, err)
		} else {
			cfg.SweepSchedule = v
		}
	}
	if v := config.GetEnvString("WORKER_TIMEZONE", def.Timezone); v != def.Timezone {
		if err := config.ValidateTimezone(v); err != nil {
			apply("timezone", "WORKER_TIMEZONE", v, err)
		} else {
			cfg.Timezone = v
		}
	}
	if d := config.GetEnvDuration("WORKER_JOB_TIMEOUT", def.JobTimeout); d != def.JobTimeout {
		if err := config.ValidateDurationRange(d, time.Second, 30*time.Minute); err != nil {
			apply("job_timeout", "WORKER_JOB_TIMEOUT", d.String(), err)
		} else {
			cfg.JobTimeout = d
		}
	}

	m.SetFallbackActive(fallback)
	return cfg
}
