package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/observability/metrics"
)

// PreferenceRepo stores user preferences in the user_preferences table.
// List columns are JSONB arrays.
type PreferenceRepo struct{ db *sql.DB }

func NewPreferenceRepo(db *sql.DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

func (repo *PreferenceRepo) LoadAll(ctx context.Context) ([]entity.UserPreferences, error) {
	const query = `
SELECT user_id, preferred_sources, preferred_categories, preferred_authors, dark_mode, updated_at
FROM user_preferences
ORDER BY user_id ASC`
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_preferences", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("LoadAll: %w", err)
	}
	defer func() { _ = rows.Close() }()

	prefs := make([]entity.UserPreferences, 0, 16)
	for rows.Next() {
		p, err := scanPreferences(rows)
		if err != nil {
			return nil, fmt.Errorf("LoadAll: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadAll: %w", err)
	}
	return prefs, nil
}

func (repo *PreferenceRepo) Save(ctx context.Context, p entity.UserPreferences) error {
	const query = `
INSERT INTO user_preferences
    (user_id, preferred_sources, preferred_categories, preferred_authors, dark_mode, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
    preferred_sources    = EXCLUDED.preferred_sources,
    preferred_categories = EXCLUDED.preferred_categories,
    preferred_authors    = EXCLUDED.preferred_authors,
    dark_mode            = EXCLUDED.dark_mode,
    updated_at           = EXCLUDED.updated_at`
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert_preferences", time.Since(start)) }()

	sources, err := encodeList(p.PreferredSources)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	categories, err := encodeList(p.PreferredCategories)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	authors, err := encodeList(p.PreferredAuthors)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	if _, err := repo.db.ExecContext(ctx, query,
		p.UserID, sources, categories, authors, p.DarkMode, p.UpdatedAt,
	); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// Delete removes the row. Deleting a user without a row is not an error.
func (repo *PreferenceRepo) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM user_preferences WHERE user_id = $1`
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete_preferences", time.Since(start)) }()

	if _, err := repo.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func scanPreferences(rows *sql.Rows) (entity.UserPreferences, error) {
	var (
		p                            entity.UserPreferences
		sources, categories, authors []byte
	)
	if err := rows.Scan(&p.UserID, &sources, &categories, &authors, &p.DarkMode, &p.UpdatedAt); err != nil {
		return entity.UserPreferences{}, err
	}
	var err error
	if p.PreferredSources, err = decodeList(sources); err != nil {
		return entity.UserPreferences{}, fmt.Errorf("preferred_sources: %w", err)
	}
	if p.PreferredCategories, err = decodeList(categories); err != nil {
		return entity.UserPreferences{}, fmt.Errorf("preferred_categories: %w", err)
	}
	if p.PreferredAuthors, err = decodeList(authors); err != nil {
		return entity.UserPreferences{}, fmt.Errorf("preferred_authors: %w", err)
	}
	return p, nil
}

func encodeList(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func decodeList(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
