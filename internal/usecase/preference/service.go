// Package preference owns the per-user defaults that seed search sessions.
// Preferences are loaded from a Store at startup and written through on
// every mutation.
package preference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"newshub/internal/domain/entity"
)

// maxListLength bounds each preferred list.
const maxListLength = 100

// Store persists preferences.
type Store interface {
	LoadAll(ctx context.Context) ([]entity.UserPreferences, error)
	Save(ctx context.Context, p entity.UserPreferences) error
	Delete(ctx context.Context, userID string) error
}

// Service provides preference use cases over an in-memory view backed by a Store.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	prefs map[string]entity.UserPreferences
}

// NewService creates a Service. Call Load before serving requests.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		prefs:  make(map[string]entity.UserPreferences),
	}
}

// Load replaces the in-memory view with everything the store holds.
func (s *Service) Load(ctx context.Context) error {
	all, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	m := make(map[string]entity.UserPreferences, len(all))
	for _, p := range all {
		m[p.UserID] = p.Clone()
	}
	s.mu.Lock()
	s.prefs = m
	s.mu.Unlock()
	s.logger.Info("preferences loaded", slog.Int("users", len(m)))
	return nil
}

// Get returns the user's preferences, or the defaults when none were saved.
func (s *Service) Get(_ context.Context, userID string) (entity.UserPreferences, error) {
	if err := validateUserID(userID); err != nil {
		return entity.UserPreferences{}, err
	}
	s.mu.RLock()
	p, ok := s.prefs[userID]
	s.mu.RUnlock()
	if !ok {
		return entity.DefaultPreferences(userID), nil
	}
	return p.Clone(), nil
}

// SetPreferredSources replaces the preferred source ids.
func (s *Service) SetPreferredSources(ctx context.Context, userID string, sources []string) (entity.UserPreferences, error) {
	list, err := normalizeList("preferredSources", sources)
	if err != nil {
		return entity.UserPreferences{}, err
	}
	return s.update(ctx, userID, func(p *entity.UserPreferences) { p.PreferredSources = list })
}

// SetPreferredCategories replaces the preferred categories.
func (s *Service) SetPreferredCategories(ctx context.Context, userID string, categories []string) (entity.UserPreferences, error) {
	list, err := normalizeList("preferredCategories", categories)
	if err != nil {
		return entity.UserPreferences{}, err
	}
	return s.update(ctx, userID, func(p *entity.UserPreferences) { p.PreferredCategories = list })
}

// SetPreferredAuthors replaces the preferred authors.
func (s *Service) SetPreferredAuthors(ctx context.Context, userID string, authors []string) (entity.UserPreferences, error) {
	list, err := normalizeList("preferredAuthors", authors)
	if err != nil {
		return entity.UserPreferences{}, err
	}
	return s.update(ctx, userID, func(p *entity.UserPreferences) { p.PreferredAuthors = list })
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	PreferredSources    *[]string `json:"preferredSources,omitempty"`
	PreferredCategories *[]string `json:"preferredCategories,omitempty"`
	PreferredAuthors    *[]string `json:"preferredAuthors,omitempty"`
	DarkMode            *bool     `json:"darkMode,omitempty"`
}

// Apply validates every field of the patch and saves them in one write.
func (s *Service) Apply(ctx context.Context, userID string, patch Patch) (entity.UserPreferences, error) {
	var sources, categories, authors []string
	var err error
	if patch.PreferredSources != nil {
		if sources, err = normalizeList("preferredSources", *patch.PreferredSources); err != nil {
			return entity.UserPreferences{}, err
		}
	}
	if patch.PreferredCategories != nil {
		if categories, err = normalizeList("preferredCategories", *patch.PreferredCategories); err != nil {
			return entity.UserPreferences{}, err
		}
	}
	if patch.PreferredAuthors != nil {
		if authors, err = normalizeList("preferredAuthors", *patch.PreferredAuthors); err != nil {
			return entity.UserPreferences{}, err
		}
	}
	return s.update(ctx, userID, func(p *entity.UserPreferences) {
		if patch.PreferredSources != nil {
			p.PreferredSources = sources
		}
		if patch.PreferredCategories != nil {
			p.PreferredCategories = categories
		}
		if patch.PreferredAuthors != nil {
			p.PreferredAuthors = authors
		}
		if patch.DarkMode != nil {
			p.DarkMode = *patch.DarkMode
		}
	})
}

// ToggleDarkMode flips the dark mode flag.
func (s *Service) ToggleDarkMode(ctx context.Context, userID string) (entity.UserPreferences, error) {
	return s.update(ctx, userID, func(p *entity.UserPreferences) { p.DarkMode = !p.DarkMode })
}

// Reset restores the defaults and removes the stored row.
func (s *Service) Reset(ctx context.Context, userID string) (entity.UserPreferences, error) {
	if err := validateUserID(userID); err != nil {
		return entity.UserPreferences{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, userID); err != nil {
		return entity.UserPreferences{}, fmt.Errorf("reset preferences: %w", err)
	}
	delete(s.prefs, userID)
	return entity.DefaultPreferences(userID), nil
}

// update applies fn to a copy, saves it and only then publishes it.
func (s *Service) update(ctx context.Context, userID string, fn func(*entity.UserPreferences)) (entity.UserPreferences, error) {
	if err := validateUserID(userID); err != nil {
		return entity.UserPreferences{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prefs[userID]
	if !ok {
		p = entity.DefaultPreferences(userID)
	}
	p = p.Clone()
	fn(&p)
	p.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, p); err != nil {
		return entity.UserPreferences{}, fmt.Errorf("save preferences: %w", err)
	}
	s.prefs[userID] = p
	return p.Clone(), nil
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &entity.ValidationError{Field: "userId", Message: "is required"}
	}
	if len(userID) > 128 {
		return &entity.ValidationError{Field: "userId", Message: "must not exceed 128 characters"}
	}
	return nil
}

// normalizeList trims entries, drops blanks and duplicates, and keeps order.
func normalizeList(field string, in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) > maxListLength {
		return nil, &entity.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must not contain more than %d entries", maxListLength),
		}
	}
	return out, nil
}
