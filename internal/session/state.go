// Package session holds the per-chat application state and the transitions
// that change it.
package session

import (
	"errors"
	"fmt"

	"grantbot/internal/annotation"
	"grantbot/internal/calendar"
	"grantbot/internal/filter"
	"grantbot/internal/model"
)

// Errors returned by grant actions.
var (
	ErrStale        = errors.New("results are out of date")
	ErrUnknownGrant = errors.New("unknown grant")
)

// Status is the state of the grant lookup.
type Status int

// Lookup statuses.
const (
	StatusInitial Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusInitial:
		return "initial"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Ticket identifies one lookup. A completion is applied only while its
// ticket is still the latest one issued.
type Ticket struct {
	State      string
	Generation uint64
}

// News is the news panel.
type News struct {
	State    string
	Articles []model.Source
	Loading  bool
	Err      error
}

// State is the application state of one session. Grants are never modified
// after a lookup completes; filters and annotations only affect derived views.
type State struct {
	Status   Status
	Selected string
	Grants   []model.Grant
	Sources  []model.Source
	Err      error

	// SearchInput is what the user typed, SearchTerm the debounced value
	// used for filtering and highlighting.
	SearchInput   string
	SearchTerm    string
	Category      model.Category
	FavoritesOnly bool

	Favorites *annotation.Favorites
	Ratings   *annotation.Ratings

	News  News
	Month calendar.Month

	searchGen uint64
	newsGen   uint64
}

// NewState returns the initial state.
func NewState(fav *annotation.Favorites, ratings *annotation.Ratings, month calendar.Month) *State {
	return &State{
		Status:    StatusInitial,
		Category:  model.CategoryAll,
		Favorites: fav,
		Ratings:   ratings,
		Month:     month,
	}
}

// Generation identifies the current grant list.
func (s *State) Generation() uint64 {
	return s.searchGen
}

// SelectState changes the selected state and reports whether it changed.
func (s *State) SelectState(name string) bool {
	if name == s.Selected {
		return false
	}
	s.Selected = name
	return true
}

// BeginSearch starts a grant lookup for the selected state.
// It returns false when no state is selected.
func (s *State) BeginSearch() (Ticket, bool) {
	if s.Selected == "" {
		return Ticket{}, false
	}
	s.searchGen++
	s.Status = StatusLoading
	s.Err = nil
	s.Grants = nil
	s.Sources = nil
	return Ticket{State: s.Selected, Generation: s.searchGen}, true
}

// CompleteSearch applies the result of the lookup identified by t.
// Results of superseded lookups are dropped and false is returned.
func (s *State) CompleteSearch(t Ticket, res model.SearchResult, err error) bool {
	if t != (Ticket{State: s.Selected, Generation: s.searchGen}) || s.Status != StatusLoading {
		return false
	}
	if err != nil {
		s.Status = StatusError
		s.Err = err
		return true
	}
	s.Status = StatusSuccess
	s.Grants = res.Grants
	s.Sources = res.Sources
	return true
}

// SetSearchInput records raw search input. Filtering keeps using the
// previous term until ApplySearchTerm is called.
func (s *State) SetSearchInput(input string) {
	s.SearchInput = input
}

// ApplySearchTerm makes term the active search term.
func (s *State) ApplySearchTerm(term string) {
	s.SearchInput = term
	s.SearchTerm = term
}

// SetCategory sets the category filter. CategoryAll disables it.
func (s *State) SetCategory(c model.Category) {
	s.Category = c
}

// ToggleFavoritesOnly flips the favorites filter and returns the new value.
func (s *State) ToggleFavoritesOnly() bool {
	s.FavoritesOnly = !s.FavoritesOnly
	return s.FavoritesOnly
}

// ClearFilters resets the search term, category and favorites filter.
func (s *State) ClearFilters() {
	s.SearchInput = ""
	s.SearchTerm = ""
	s.Category = model.CategoryAll
	s.FavoritesOnly = false
}

// ToggleFavorite flips the favorite flag of a grant and returns the new value.
func (s *State) ToggleFavorite(name string) bool {
	return s.Favorites.Toggle(name)
}

// RateFromClick applies a click on star number clicked. Clicking the current
// rating clears it. It returns the new rating.
func (s *State) RateFromClick(name string, clicked int) (int, error) {
	if clicked < 1 || clicked > annotation.MaxRating {
		return 0, fmt.Errorf("%w: %d", annotation.ErrInvalidRating, clicked)
	}
	next := annotation.NextRating(s.Ratings.Get(name), clicked)
	if err := s.Ratings.Set(name, next); err != nil {
		return 0, err
	}
	return next, nil
}

// SetRating sets the rating of a grant. Setting the current value keeps it.
func (s *State) SetRating(name string, stars int) error {
	return s.Ratings.Set(name, stars)
}

// ClearRating removes the rating of a grant.
func (s *State) ClearRating(name string) bool {
	return s.Ratings.Clear(name)
}

// BeginNews starts a news lookup for the selected state.
func (s *State) BeginNews() (Ticket, bool) {
	if s.Selected == "" {
		return Ticket{}, false
	}
	s.newsGen++
	s.News = News{State: s.Selected, Loading: true}
	return Ticket{State: s.Selected, Generation: s.newsGen}, true
}

// CompleteNews applies the result of the news lookup identified by t.
func (s *State) CompleteNews(t Ticket, articles []model.Source, err error) bool {
	if t != (Ticket{State: s.Selected, Generation: s.newsGen}) || !s.News.Loading {
		return false
	}
	s.News = News{State: t.State, Articles: articles, Err: err}
	return true
}

// ShiftCalendar moves the displayed month by n and returns it.
func (s *State) ShiftCalendar(n int) calendar.Month {
	s.Month = s.Month.Shift(n)
	return s.Month
}

// Criteria returns the active filter criteria.
func (s *State) Criteria() filter.Criteria {
	return filter.Criteria{
		Query:         s.SearchTerm,
		Category:      s.Category,
		FavoritesOnly: s.FavoritesOnly,
		Favorites:     s.Favorites,
	}
}

// grantAt returns grant idx of generation gen.
func (s *State) grantAt(gen uint64, idx int) (model.Grant, error) {
	if gen != s.searchGen || s.Status != StatusSuccess {
		return model.Grant{}, ErrStale
	}
	if idx < 0 || idx >= len(s.Grants) {
		return model.Grant{}, fmt.Errorf("%w: %d", ErrUnknownGrant, idx)
	}
	return s.Grants[idx], nil
}
