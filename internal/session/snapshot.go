package session

import (
	"slices"
	"time"

	"grantbot/internal/calendar"
	"grantbot/internal/deadline"
	"grantbot/internal/filter"
	"grantbot/internal/model"
)

// Item is a visible grant with its annotations.
type Item struct {
	// Index is the position in the full grant list, stable across filter changes.
	Index       int
	Grant       model.Grant
	Favorite    bool
	Rating      int
	ClosingSoon bool
}

// Snapshot is a read-only view of a session, safe to use after the lock
// is released.
type Snapshot struct {
	Status     Status
	Selected   string
	Err        error
	Generation uint64

	// Total is the number of grants before filtering.
	Total   int
	Items   []Item
	Sources []model.Source

	SearchInput   string
	SearchTerm    string
	Category      model.Category
	FavoritesOnly bool
	FavoriteCount int

	News      News
	Month     calendar.Month
	Deadlines deadline.Index
}

// Snapshot derives the visible grants and the deadline index from s.
func (s *State) Snapshot(now time.Time) Snapshot {
	c := s.Criteria()
	snap := Snapshot{
		Status:        s.Status,
		Selected:      s.Selected,
		Err:           s.Err,
		Generation:    s.searchGen,
		Total:         len(s.Grants),
		Items:         []Item{},
		Sources:       slices.Clone(s.Sources),
		SearchInput:   s.SearchInput,
		SearchTerm:    s.SearchTerm,
		Category:      s.Category,
		FavoritesOnly: s.FavoritesOnly,
		FavoriteCount: s.Favorites.Len(),
		News: News{
			State:    s.News.State,
			Articles: slices.Clone(s.News.Articles),
			Loading:  s.News.Loading,
			Err:      s.News.Err,
		},
		Month: s.Month,
	}

	visible := make([]model.Grant, 0, len(s.Grants))
	for i, g := range s.Grants {
		if !filter.Match(g, c) {
			continue
		}
		visible = append(visible, g)
		snap.Items = append(snap.Items, s.item(i, now))
	}
	snap.Deadlines = deadline.BuildIndex(visible)
	return snap
}

// Calendar lays out the displayed month.
func (s Snapshot) Calendar(now time.Time) calendar.View {
	return calendar.Build(s.Month, now, s.Deadlines)
}

// Item returns the visible item at 1-based position pos.
func (s Snapshot) Item(pos int) (Item, bool) {
	if pos < 1 || pos > len(s.Items) {
		return Item{}, false
	}
	return s.Items[pos-1], true
}

// Filtered reports whether any filter is active.
func (s Snapshot) Filtered() bool {
	return s.SearchTerm != "" || (s.Category != "" && s.Category != model.CategoryAll) || s.FavoritesOnly
}

func (s *State) item(idx int, now time.Time) Item {
	g := s.Grants[idx]
	return Item{
		Index:       idx,
		Grant:       g,
		Favorite:    s.Favorites.Has(g.Name),
		Rating:      s.Ratings.Get(g.Name),
		ClosingSoon: deadline.ClosingSoon(g.Deadline, now),
	}
}
