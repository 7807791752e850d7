package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"grantbot/internal/annotation"
	"grantbot/internal/calendar"
	"grantbot/internal/debounce"
	"grantbot/internal/model"
)

// Researcher performs the grant and news lookups.
type Researcher interface {
	Grants(ctx context.Context, state string) (model.SearchResult, error)
	News(ctx context.Context, state string) ([]model.Source, error)
}

// Manager owns the sessions. Each session has its own lock; lookups run
// without holding it.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*entry

	research Researcher
	store    *annotation.Store
	delay    time.Duration
	now      func() time.Time
	log      *slog.Logger
}

type entry struct {
	mu        sync.Mutex
	state     *State
	debouncer *debounce.Debouncer
}

// NewManager creates a Manager. delay is the search input quiet period.
func NewManager(r Researcher, store *annotation.Store, delay time.Duration, log *slog.Logger) *Manager {
	if delay <= 0 {
		delay = debounce.DefaultDelay
	}
	return &Manager{
		sessions: make(map[int64]*entry),
		research: r,
		store:    store,
		delay:    delay,
		now:      time.Now,
		log:      log,
	}
}

func (m *Manager) session(ctx context.Context, id int64) *entry {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return e
	}

	fav := m.store.LoadFavorites(ctx, id)
	ratings := m.store.LoadRatings(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		return e
	}
	e = &entry{
		state:     NewState(fav, ratings, calendar.MonthOf(m.now())),
		debouncer: debounce.New(m.delay),
	}
	m.sessions[id] = e
	m.log.Debug("session created", "session_id", id, "favorites", fav.Len(), "ratings", ratings.Len())
	return e
}

// update runs fn under the session lock and returns the resulting snapshot.
func (m *Manager) update(ctx context.Context, id int64, fn func(s *State)) Snapshot {
	e := m.session(ctx, id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if fn != nil {
		fn(e.state)
	}
	return e.state.Snapshot(m.now())
}

// Snapshot returns the current view of a session.
func (m *Manager) Snapshot(ctx context.Context, id int64) Snapshot {
	return m.update(ctx, id, nil)
}

// Selected returns the selected state, "" when none.
func (m *Manager) Selected(ctx context.Context, id int64) string {
	e := m.session(ctx, id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Selected
}

// Search selects state and looks up its grants. An empty state repeats the
// lookup for the selected one. The returned bool is false when there was
// nothing to search or a newer lookup superseded this one.
func (m *Manager) Search(ctx context.Context, id int64, state string) (Snapshot, bool) {
	e := m.session(ctx, id)

	e.mu.Lock()
	if state != "" {
		e.state.SelectState(state)
	}
	t, ok := e.state.BeginSearch()
	e.mu.Unlock()
	if !ok {
		return m.Snapshot(ctx, id), false
	}

	res, err := m.research.Grants(ctx, t.State)

	e.mu.Lock()
	defer e.mu.Unlock()
	applied := e.state.CompleteSearch(t, res, err)
	if !applied {
		m.log.Debug("dropped stale grant lookup", "session_id", id, "state", t.State, "generation", t.Generation)
	}
	return e.state.Snapshot(m.now()), applied
}

// News looks up news for the selected state.
func (m *Manager) News(ctx context.Context, id int64) (Snapshot, bool) {
	e := m.session(ctx, id)

	e.mu.Lock()
	t, ok := e.state.BeginNews()
	e.mu.Unlock()
	if !ok {
		return m.Snapshot(ctx, id), false
	}

	articles, err := m.research.News(ctx, t.State)

	e.mu.Lock()
	defer e.mu.Unlock()
	applied := e.state.CompleteNews(t, articles, err)
	if !applied {
		m.log.Debug("dropped stale news lookup", "session_id", id, "state", t.State, "generation", t.Generation)
	}
	return e.state.Snapshot(m.now()), applied
}

// Type records search input and applies it once input has been quiet for
// the debounce delay. onApply receives the snapshot after the term is applied.
func (m *Manager) Type(ctx context.Context, id int64, input string, onApply func(Snapshot)) {
	e := m.session(ctx, id)
	e.mu.Lock()
	e.state.SetSearchInput(input)
	e.mu.Unlock()

	e.debouncer.Trigger(func() {
		e.mu.Lock()
		e.state.ApplySearchTerm(input)
		snap := e.state.Snapshot(m.now())
		e.mu.Unlock()
		if onApply != nil {
			onApply(snap)
		}
	})
}

// Find applies a search term immediately, dropping pending input.
func (m *Manager) Find(ctx context.Context, id int64, term string) Snapshot {
	m.session(ctx, id).debouncer.Cancel()
	return m.update(ctx, id, func(s *State) { s.ApplySearchTerm(term) })
}

// SetCategory sets the category filter.
func (m *Manager) SetCategory(ctx context.Context, id int64, c model.Category) Snapshot {
	return m.update(ctx, id, func(s *State) { s.SetCategory(c) })
}

// ToggleFavoritesOnly flips the favorites filter.
func (m *Manager) ToggleFavoritesOnly(ctx context.Context, id int64) Snapshot {
	return m.update(ctx, id, func(s *State) { s.ToggleFavoritesOnly() })
}

// ClearFilters resets all filters and drops pending search input.
func (m *Manager) ClearFilters(ctx context.Context, id int64) Snapshot {
	m.session(ctx, id).debouncer.Cancel()
	return m.update(ctx, id, func(s *State) { s.ClearFilters() })
}

// ShiftCalendar moves the displayed month by delta.
func (m *Manager) ShiftCalendar(ctx context.Context, id int64, delta int) Snapshot {
	return m.update(ctx, id, func(s *State) { s.ShiftCalendar(delta) })
}

// ToggleFavorite flips the favorite flag of grant idx from lookup gen.
func (m *Manager) ToggleFavorite(ctx context.Context, id int64, gen uint64, idx int) (Item, error) {
	return m.annotate(ctx, id, gen, idx, func(s *State, g model.Grant) error {
		s.ToggleFavorite(g.Name)
		m.store.SaveFavorites(ctx, id, s.Favorites)
		return nil
	})
}

// RateFromClick applies a star click on grant idx from lookup gen.
func (m *Manager) RateFromClick(ctx context.Context, id int64, gen uint64, idx, stars int) (Item, error) {
	return m.annotate(ctx, id, gen, idx, func(s *State, g model.Grant) error {
		if _, err := s.RateFromClick(g.Name, stars); err != nil {
			return err
		}
		m.store.SaveRatings(ctx, id, s.Ratings)
		return nil
	})
}

// SetRating sets the rating of grant idx from lookup gen.
func (m *Manager) SetRating(ctx context.Context, id int64, gen uint64, idx, stars int) (Item, error) {
	return m.annotate(ctx, id, gen, idx, func(s *State, g model.Grant) error {
		if err := s.SetRating(g.Name, stars); err != nil {
			return err
		}
		m.store.SaveRatings(ctx, id, s.Ratings)
		return nil
	})
}

// ClearRating removes the rating of grant idx from lookup gen.
func (m *Manager) ClearRating(ctx context.Context, id int64, gen uint64, idx int) (Item, error) {
	return m.annotate(ctx, id, gen, idx, func(s *State, g model.Grant) error {
		if s.ClearRating(g.Name) {
			m.store.SaveRatings(ctx, id, s.Ratings)
		}
		return nil
	})
}

// annotate runs fn on grant idx and saves under the session lock so that
// writes reach storage in the order they were made.
func (m *Manager) annotate(ctx context.Context, id int64, gen uint64, idx int, fn func(*State, model.Grant) error) (Item, error) {
	e := m.session(ctx, id)
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := e.state.grantAt(gen, idx)
	if err != nil {
		return Item{}, err
	}
	if err := fn(e.state, g); err != nil {
		return Item{}, err
	}
	return e.state.item(idx, m.now()), nil
}

// Close drops pending search input of all sessions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.sessions {
		e.debouncer.Cancel()
	}
}
