// Package deadline interprets the free-form deadline strings of grants.
package deadline

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"grantbot/internal/model"
)

// Window is the number of days ahead in which a deadline counts as closing soon.
const Window = 30

const keyLayout = "2006-01-02"

// Deadlines containing any of these are never dates.
var nonDateKeywords = []string{"varies", "n/a", "ongoing"}

var (
	weekdayPrefix = regexp.MustCompile(`(?i)^(mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)(day|nesday|rsday|urday)?\.?,?\s+`)
	allDigits     = regexp.MustCompile(`^\d+$`)
)

// minYear rejects dates parsed without a year, which come back as year 0.
const minYear = 1000

// Parse interprets a deadline string as a calendar date.
// The result is midnight UTC of the date as written; the time of day and
// any zone in the input are dropped.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	lower := strings.ToLower(s)
	for _, kw := range nonDateKeywords {
		if strings.Contains(lower, kw) {
			return time.Time{}, false
		}
	}

	// Bare numbers would be read as unix timestamps.
	if allDigits.MatchString(s) {
		return time.Time{}, false
	}
	s = weekdayPrefix.ReplaceAllString(s, "")

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.Year() < minYear {
		return time.Time{}, false
	}
	return DateOf(t), true
}

// DateOf truncates t to its calendar date, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Key formats the calendar date of t as YYYY-MM-DD.
func Key(t time.Time) string {
	return DateOf(t).Format(keyLayout)
}

// ClosingSoon reports whether deadline is a date between today and
// Window days from today, both ends inclusive.
func ClosingSoon(deadline string, now time.Time) bool {
	d, ok := Parse(deadline)
	if !ok {
		return false
	}
	today := DateOf(now)
	if d.Before(today) {
		return false
	}
	return !d.After(today.AddDate(0, 0, Window))
}

// Index is the set of dates that carry at least one grant deadline.
type Index map[string]struct{}

// BuildIndex collects the parseable deadlines of grants.
func BuildIndex(grants []model.Grant) Index {
	idx := make(Index)
	for _, g := range grants {
		if d, ok := Parse(g.Deadline); ok {
			idx[Key(d)] = struct{}{}
		}
	}
	return idx
}

// Has reports whether the calendar date of t has a deadline.
func (ix Index) Has(t time.Time) bool {
	_, ok := ix[Key(t)]
	return ok
}
