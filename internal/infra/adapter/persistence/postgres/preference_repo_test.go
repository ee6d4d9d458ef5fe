package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── ヘルパ ──────────────────────────────── */

var prefColumns = []string{
	"user_id", "preferred_sources", "preferred_categories", "preferred_authors", "dark_mode", "updated_at",
}

/* ──────────────────────────────── 1. LoadAll ──────────────────────────────── */

func TestPreferenceRepo_LoadAll(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	updated := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_preferences`)).
		WillReturnRows(sqlmock.NewRows(prefColumns).
			AddRow("alice", []byte(`["bbc-news","cnn"]`), []byte(`["technology"]`), []byte(`[]`), true, updated).
			AddRow("bob", []byte(`[]`), []byte(`null`), nil, false, updated))

	got, err := postgres.NewPreferenceRepo(db).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll err=%v", err)
	}
	want := []entity.UserPreferences{
		{
			UserID:              "alice",
			PreferredSources:    []string{"bbc-news", "cnn"},
			PreferredCategories: []string{"technology"},
			PreferredAuthors:    []string{},
			DarkMode:            true,
			UpdatedAt:           updated,
		},
		{
			UserID:              "bob",
			PreferredSources:    []string{},
			PreferredCategories: []string{},
			PreferredAuthors:    []string{},
			UpdatedAt:           updated,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPreferenceRepo_LoadAll_BadJSON(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM user_preferences`).
		WillReturnRows(sqlmock.NewRows(prefColumns).
			AddRow("alice", []byte(`{`), []byte(`[]`), []byte(`[]`), false, time.Now()))

	if _, err := postgres.NewPreferenceRepo(db).LoadAll(context.Background()); err == nil {
		t.Fatal("want error for malformed JSONB")
	}
}

func TestPreferenceRepo_LoadAll_QueryError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM user_preferences`).WillReturnError(sql.ErrConnDone)

	_, err := postgres.NewPreferenceRepo(db).LoadAll(context.Background())
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("err=%v, want ErrConnDone", err)
	}
}

/* ──────────────────────────────── 2. Save ──────────────────────────────── */

func TestPreferenceRepo_Save(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	updated := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_preferences`)).
		WithArgs("alice", []byte(`["cnn"]`), []byte(`[]`), []byte(`["Jane Doe"]`), true, updated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := postgres.NewPreferenceRepo(db).Save(context.Background(), entity.UserPreferences{
		UserID:           "alice",
		PreferredSources: []string{"cnn"},
		PreferredAuthors: []string{"Jane Doe"},
		DarkMode:         true,
		UpdatedAt:        updated,
	})
	if err != nil {
		t.Fatalf("Save err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. Delete ──────────────────────────────── */

func TestPreferenceRepo_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_preferences WHERE user_id = $1`)).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := postgres.NewPreferenceRepo(db).Delete(context.Background(), "alice"); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
