// Package model defines the domain types used across the application.
package model

import "strings"

// Category classifies a grant by its funding source.
type Category string

// Supported grant categories.
const (
	CategoryFederal   Category = "Federal"
	CategoryState     Category = "State"
	CategoryCorporate Category = "Corporate"
	CategoryOther     Category = "Other"
)

// CategoryAll is the filter value that disables category filtering.
const CategoryAll Category = "All"

// Categories lists the grant categories in display order.
var Categories = []Category{CategoryFederal, CategoryState, CategoryCorporate, CategoryOther}

// ParseCategory resolves s case-insensitively to a category.
// CategoryAll is accepted as well since it is a valid filter value.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(CategoryAll)) {
		return CategoryAll, true
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// NormalizeCategory maps a raw category from the AI service onto the fixed set.
// Anything unrecognized becomes CategoryOther.
func NormalizeCategory(raw string) Category {
	c, ok := ParseCategory(raw)
	if !ok || c == CategoryAll {
		return CategoryOther
	}
	return c
}

// Grant is a funding opportunity returned by a grant lookup.
// Name doubles as the key for favorites and ratings.
type Grant struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"type"`
	AwardAmount string   `json:"awardAmount,omitempty"`
	Eligibility string   `json:"eligibility,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
	Website     string   `json:"website"`
}

// Source is a title+URL citation backing a grant list or the news feed.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SearchResult is the outcome of a grant lookup for one state.
type SearchResult struct {
	Grants  []Grant
	Sources []Source
}
