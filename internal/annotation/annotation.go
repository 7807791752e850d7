// Package annotation holds the user's favorites and star ratings, keyed by grant name.
package annotation

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// MaxRating is the highest star rating.
const MaxRating = 5

// ErrInvalidRating is returned for ratings outside 0..MaxRating.
var ErrInvalidRating = errors.New("invalid rating")

// Favorites is an insertion-ordered set of grant names.
type Favorites struct {
	names []string
	set   map[string]struct{}
}

// NewFavorites returns a set holding names, dropping duplicates and empty names.
func NewFavorites(names ...string) *Favorites {
	f := &Favorites{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		f.add(n)
	}
	return f
}

func (f *Favorites) add(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := f.set[name]; ok {
		return false
	}
	f.set[name] = struct{}{}
	f.names = append(f.names, name)
	return true
}

// Has reports whether name is a favorite.
func (f *Favorites) Has(name string) bool {
	_, ok := f.set[name]
	return ok
}

// Toggle adds or removes name and reports whether it is now a favorite.
func (f *Favorites) Toggle(name string) bool {
	if f.Has(name) {
		delete(f.set, name)
		f.names = slices.DeleteFunc(f.names, func(n string) bool { return n == name })
		return false
	}
	return f.add(name)
}

// Names returns the favorites in the order they were added.
func (f *Favorites) Names() []string {
	return slices.Clone(f.names)
}

// Len returns the number of favorites.
func (f *Favorites) Len() int {
	return len(f.names)
}

// Clone returns an independent copy.
func (f *Favorites) Clone() *Favorites {
	return NewFavorites(f.names...)
}

// Ratings maps grant names to 1..MaxRating stars. Unrated grants are absent.
type Ratings struct {
	m map[string]int
}

// NewRatings returns ratings initialised from m. Out-of-range entries are dropped.
func NewRatings(m map[string]int) *Ratings {
	r := &Ratings{m: make(map[string]int, len(m))}
	for name, v := range m {
		if name != "" && v > 0 && v <= MaxRating {
			r.m[name] = v
		}
	}
	return r
}

// Get returns the rating for name, 0 when unrated.
func (r *Ratings) Get(name string) int {
	return r.m[name]
}

// Set stores the rating for name. A rating of 0 clears it.
func (r *Ratings) Set(name string, stars int) error {
	if stars < 0 || stars > MaxRating {
		return fmt.Errorf("%w: %d", ErrInvalidRating, stars)
	}
	if stars == 0 {
		delete(r.m, name)
		return nil
	}
	r.m[name] = stars
	return nil
}

// Clear removes the rating for name and reports whether one existed.
func (r *Ratings) Clear(name string) bool {
	_, ok := r.m[name]
	delete(r.m, name)
	return ok
}

// Map returns a copy of the ratings.
func (r *Ratings) Map() map[string]int {
	return maps.Clone(r.m)
}

// Len returns the number of rated grants.
func (r *Ratings) Len() int {
	return len(r.m)
}

// Clone returns an independent copy.
func (r *Ratings) Clone() *Ratings {
	return &Ratings{m: maps.Clone(r.m)}
}

// NextRating returns the rating after the star numbered clicked is pressed.
// Pressing the star that matches the current rating clears it.
func NextRating(current, clicked int) int {
	if clicked == current {
		return 0
	}
	return clicked
}
