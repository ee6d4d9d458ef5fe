package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"newshub/internal/domain/entity"
	"newshub/internal/observability/metrics"
)

// DefaultIdleTimeout is how long an unused session survives a sweep.
const DefaultIdleTimeout = 30 * time.Minute

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = fmt.Errorf("session: %w", entity.ErrNotFound)

// Preferences supplies the defaults a new session is seeded with.
type Preferences interface {
	Get(ctx context.Context, userID string) (entity.UserPreferences, error)
}

// Registry owns the live sessions.
type Registry struct {
	fetcher     Fetcher
	prefs       Preferences
	logger      *slog.Logger
	idleTimeout time.Duration
	now         func() time.Time
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a Registry. prefs may be nil, in which case sessions
// are not seeded. A non-positive idleTimeout uses DefaultIdleTimeout.
func NewRegistry(f Fetcher, prefs Preferences, idleTimeout time.Duration, logger *slog.Logger) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		fetcher:     f,
		prefs:       prefs,
		logger:      logger,
		idleTimeout: idleTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
		sessions:    make(map[string]*Session),
	}
}

// Create opens an idle session. When userID is set, an empty sources or
// categories filter is filled from the user's preferred ones, each on its own.
func (r *Registry) Create(ctx context.Context, userID string, initial entity.ArticleParams) (*Session, error) {
	p := initial.Clone()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if p.SortBy == "" {
		p.SortBy = entity.SortPublishedAt
	}
	if userID != "" && r.prefs != nil && (len(p.Sources) == 0 || len(p.Categories) == 0) {
		prefs, err := r.prefs.Get(ctx, userID)
		if err != nil {
			r.logger.Warn("session not seeded from preferences",
				slog.String("user_id", userID),
				slog.Any("error", err))
		} else {
			if len(p.Sources) == 0 {
				p.Sources = slices.Clone(prefs.PreferredSources)
			}
			if len(p.Categories) == 0 {
				p.Categories = slices.Clone(prefs.PreferredCategories)
			}
		}
	}

	s := newSession(r.newID(), userID, r.fetcher, p, r.now)
	r.mu.Lock()
	r.sessions[s.id] = s
	n := len(r.sessions)
	r.mu.Unlock()
	metrics.UpdateSessionsActive(n)
	return s, nil
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown id is an error.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	metrics.UpdateSessionsActive(n)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the idle timeout and returns
// how many were removed. Sessions with a fetch in flight are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.busy() || s.idleSince().After(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.UpdateSessionsActive(n)
	if removed > 0 {
		r.logger.Info("expired search sessions removed",
			slog.Int("removed", removed),
			slog.Int("active", n))
	}
	return removed
}
