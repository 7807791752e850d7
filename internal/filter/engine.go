// Package filter implements the grant matching engine and search-term highlighting.
package filter

import (
	"strings"

	"github.com/samber/lo"

	"grantbot/internal/model"
)

// FavoriteSet reports whether a grant name is favorited.
type FavoriteSet interface {
	Has(name string) bool
}

// Criteria holds the active filter conditions of a grant list view.
type Criteria struct {
	Query         string
	Category      model.Category
	FavoritesOnly bool
	Favorites     FavoriteSet
}

// Words splits a query into lowercase search words.
func Words(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Match checks whether a grant satisfies every active condition.
// Category "" or CategoryAll disables the category check.
// Every query word must appear in the name, description or eligibility text.
func Match(g model.Grant, c Criteria) bool {
	return matchWords(g, c, Words(c.Query))
}

// Apply returns the grants matching c in their original order.
// The input slice is never modified.
func Apply(grants []model.Grant, c Criteria) []model.Grant {
	words := Words(c.Query)
	return lo.Filter(grants, func(g model.Grant, _ int) bool {
		return matchWords(g, c, words)
	})
}

func matchWords(g model.Grant, c Criteria, words []string) bool {
	if c.Category != "" && c.Category != model.CategoryAll && g.Category != c.Category {
		return false
	}
	if c.FavoritesOnly && (c.Favorites == nil || !c.Favorites.Has(g.Name)) {
		return false
	}
	if len(words) == 0 {
		return true
	}

	text := searchText(g)
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}

func searchText(g model.Grant) string {
	parts := lo.Filter([]string{g.Name, g.Description, g.Eligibility}, func(s string, _ int) bool {
		return s != ""
	})
	return strings.ToLower(strings.Join(parts, " "))
}
