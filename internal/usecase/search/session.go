// Package search keeps the state of interactive article searches. A Session
// holds the current query, the result of the latest fetch and the state the
// UI renders; a Registry owns the live sessions.
package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/observability/metrics"
)

// State is where a session is in its fetch cycle.
type State string

// Session states.
const (
	StateIdle          State = "idle"
	StateQuerying      State = "querying"
	StateSuccess       State = "success"
	StatePartialEmpty  State = "partial-empty"
	StateErrorAbsorbed State = "error-absorbed"
	StateError         State = "error"
)

// Fetcher runs one aggregated query.
type Fetcher interface {
	FetchAll(ctx context.Context, p entity.ArticleParams) (entity.ArticleResponse, error)
}

// Change describes one transition. Nil fields are left as they are.
type Change struct {
	Query      *string        `json:"q,omitempty"`
	Sources    *[]string      `json:"sources,omitempty"`
	Categories *[]string      `json:"categories,omitempty"`
	From       *string        `json:"from,omitempty"`
	To         *string        `json:"to,omitempty"`
	SortBy     *entity.SortBy `json:"sortBy,omitempty"`
	Page       *int           `json:"page,omitempty"`
	PageSize   *int           `json:"pageSize,omitempty"`
}

// resetsPage reports whether the change touches a filter. Filter changes
// restart paging; sort and page changes do not.
func (c Change) resetsPage() bool {
	return c.Query != nil || c.Sources != nil || c.Categories != nil ||
		c.From != nil || c.To != nil || c.PageSize != nil
}

// Snapshot is a consistent copy of a session.
type Snapshot struct {
	ID         string                  `json:"id"`
	UserID     string                  `json:"userId,omitempty"`
	Params     entity.ArticleParams    `json:"params"`
	State      State                   `json:"state"`
	Generation uint64                  `json:"generation"`
	Result     *entity.ArticleResponse `json:"result,omitempty"`
	Error      string                  `json:"error,omitempty"`
	UpdatedAt  time.Time               `json:"updatedAt"`
}

// Session is one interactive search. It is safe for concurrent use; when
// transitions overlap only the result of the latest one is kept.
type Session struct {
	id      string
	userID  string
	fetcher Fetcher
	now     func() time.Time

	mu       sync.Mutex
	params   entity.ArticleParams
	state    State
	gen      uint64
	result   *entity.ArticleResponse
	err      error
	lastUsed time.Time
}

func newSession(id, userID string, f Fetcher, p entity.ArticleParams, now func() time.Time) *Session {
	return &Session{
		id:       id,
		userID:   userID,
		fetcher:  f,
		now:      now,
		params:   p,
		state:    StateIdle,
		lastUsed: now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Snapshot returns the current state without fetching.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:         s.id,
		UserID:     s.userID,
		Params:     s.params.Clone(),
		State:      s.state,
		Generation: s.gen,
		UpdatedAt:  s.lastUsed,
	}
	if s.result != nil {
		r := *s.result
		r.Articles = slices.Clone(r.Articles)
		r.Sources = slices.Clone(r.Sources)
		snap.Result = &r
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}

// Apply performs one transition and fetches the resulting page.
func (s *Session) Apply(ctx context.Context, c Change) (Snapshot, error) {
	return s.transition(ctx, func(p entity.ArticleParams) entity.ArticleParams {
		if c.Query != nil {
			p.Query = strings.TrimSpace(*c.Query)
		}
		if c.Sources != nil {
			p.Sources = slices.Clone(*c.Sources)
		}
		if c.Categories != nil {
			p.Categories = slices.Clone(*c.Categories)
		}
		if c.From != nil {
			p.From = *c.From
		}
		if c.To != nil {
			p.To = *c.To
		}
		if c.PageSize != nil {
			p.PageSize = *c.PageSize
		}
		if c.SortBy != nil {
			p.SortBy = *c.SortBy
		}
		if c.resetsPage() {
			p.Page = entity.DefaultPage
		}
		if c.Page != nil {
			p.Page = *c.Page
		}
		return p
	})
}

// ToggleSource adds the source id when absent and removes it otherwise.
func (s *Session) ToggleSource(ctx context.Context, id string) (Snapshot, error) {
	return s.transition(ctx, func(p entity.ArticleParams) entity.ArticleParams {
		p.Sources = toggle(p.Sources, id)
		p.Page = entity.DefaultPage
		return p
	})
}

// ToggleCategory adds the category when absent and removes it otherwise.
func (s *Session) ToggleCategory(ctx context.Context, category string) (Snapshot, error) {
	return s.transition(ctx, func(p entity.ArticleParams) entity.ArticleParams {
		p.Categories = toggle(p.Categories, category)
		p.Page = entity.DefaultPage
		return p
	})
}

// NextPage fetches the following page. Nothing from the current page is
// reused: the merged feed is fetched, sorted and sliced again.
// A session that has never been queried is returned as it is.
func (s *Session) NextPage(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.state == StateIdle {
		defer s.mu.Unlock()
		return s.snapshotLocked(), nil
	}
	s.mu.Unlock()
	return s.transition(ctx, func(p entity.ArticleParams) entity.ArticleParams {
		p.Page = p.PageOrDefault() + 1
		return p
	})
}

// Refresh re-runs the current query.
func (s *Session) Refresh(ctx context.Context) (Snapshot, error) {
	return s.transition(ctx, func(p entity.ArticleParams) entity.ArticleParams { return p })
}

// Reset clears every filter except the free-text query.
func (s *Session) Reset(ctx context.Context) (Snapshot, error) {
	return s.transition(ctx, func(p entity.ArticleParams) entity.ArticleParams {
		return ResetParams(p)
	})
}

// ResetParams returns the defaults, keeping only the query.
func ResetParams(p entity.ArticleParams) entity.ArticleParams {
	return entity.ArticleParams{
		Query:      p.Query,
		Sources:    []string{},
		Categories: []string{},
		Page:       entity.DefaultPage,
		PageSize:   entity.DefaultPageSize,
		SortBy:     entity.SortPublishedAt,
	}
}

// transition validates the new params, bumps the generation and fetches.
// Invalid params leave the session untouched.
func (s *Session) transition(ctx context.Context, fn func(entity.ArticleParams) entity.ArticleParams) (Snapshot, error) {
	s.mu.Lock()
	next := fn(s.params.Clone())
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return Snapshot{}, fmt.Errorf("session %s: %w", s.id, err)
	}
	s.params = next
	s.gen++
	gen := s.gen
	s.state = StateQuerying
	s.lastUsed = s.now()
	s.mu.Unlock()

	resp, err := s.fetcher.FetchAll(ctx, next.Clone())

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// 新しい遷移が始まっているので結果は捨てる
		metrics.RecordStaleResponse()
		return s.snapshotLocked(), nil
	}
	s.lastUsed = s.now()
	if err != nil {
		s.state = StateError
		s.result = nil
		s.err = err
		metrics.RecordSessionResult(string(s.state))
		return s.snapshotLocked(), fmt.Errorf("session %s: %w", s.id, err)
	}
	s.state = resultState(resp)
	s.result = &resp
	s.err = nil
	metrics.RecordSessionResult(string(s.state))
	return s.snapshotLocked(), nil
}

// resultState classifies a completed fetch.
func resultState(resp entity.ArticleResponse) State {
	failed := resp.FailedProviders()
	switch {
	case failed == 0:
		return StateSuccess
	case failed == len(resp.Sources):
		return StateErrorAbsorbed
	default:
		return StatePartialEmpty
	}
}

func toggle(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1)
	}
	if v == "" {
		return list
	}
	return append(slices.Clone(list), v)
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateQuerying
}
