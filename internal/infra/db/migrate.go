package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_preferences (
    user_id              TEXT PRIMARY KEY,
    preferred_sources    JSONB NOT NULL DEFAULT '[]'::jsonb,
    preferred_categories JSONB NOT NULL DEFAULT '[]'::jsonb,
    preferred_authors    JSONB NOT NULL DEFAULT '[]'::jsonb,
    dark_mode            BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	// 古い設定から順に掃除する運用向け
	`CREATE INDEX IF NOT EXISTS idx_user_preferences_updated_at ON user_preferences(updated_at)`,
}

// MigrateUp creates the tables the service needs.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
