package bot

import (
	"fmt"
	"html"
	"strings"

	"grantbot/internal/annotation"
	"grantbot/internal/calendar"
	"grantbot/internal/filter"
	"grantbot/internal/model"
	"grantbot/internal/session"
)

// maxCards limits how many grant cards one listing sends.
const maxCards = 10

// maxSummarySources limits the sources shown under a listing.
const maxSummarySources = 5

// FormatHighlighted escapes text for HTML and underlines the words of query.
func FormatHighlighted(text, query string) string {
	return filter.Render(filter.Highlight(text, query),
		func(s string) string { return "<u>" + html.EscapeString(s) + "</u>" },
		html.EscapeString,
	)
}

// FormatStars renders a 0-5 rating as filled and empty stars.
func FormatStars(rating int) string {
	rating = max(0, min(rating, annotation.MaxRating))
	return strings.Repeat("★", rating) + strings.Repeat("☆", annotation.MaxRating-rating)
}

// FormatCard formats one grant with its badges and annotations.
func FormatCard(pos int, it session.Item, query string) string {
	g := it.Grant
	var b strings.Builder

	fmt.Fprintf(&b, "%d. <b>%s</b>", pos, FormatHighlighted(g.Name, query))
	if it.Favorite {
		b.WriteString(" ❤️")
	}
	fmt.Fprintf(&b, "\n[%s]", html.EscapeString(string(g.Category)))
	if it.ClosingSoon {
		b.WriteString(" ⏰ Closing soon")
	}
	b.WriteString("\n")

	if g.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", FormatHighlighted(g.Description, query))
	}
	if g.AwardAmount != "" {
		fmt.Fprintf(&b, "\nAward: %s", html.EscapeString(g.AwardAmount))
	}
	if g.Eligibility != "" {
		fmt.Fprintf(&b, "\nEligibility: %s", FormatHighlighted(g.Eligibility, query))
	}
	if g.Deadline != "" {
		fmt.Fprintf(&b, "\nDeadline: %s", html.EscapeString(g.Deadline))
	}
	if it.Rating > 0 {
		fmt.Fprintf(&b, "\nYour rating: %s", FormatStars(it.Rating))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSummary formats the header of a grant listing: counts, active
// filters and the top sources.
func FormatSummary(snap session.Snapshot) string {
	var b strings.Builder
	state := html.EscapeString(snap.Selected)

	if len(snap.Items) == snap.Total {
		fmt.Fprintf(&b, "<b>%s for %s</b>", plural(snap.Total, "grant"), state)
	} else {
		fmt.Fprintf(&b, "<b>Showing %d of %d grants for %s</b>", len(snap.Items), snap.Total, state)
	}

	var active []string
	if snap.SearchTerm != "" {
		active = append(active, fmt.Sprintf("search \"%s\"", html.EscapeString(snap.SearchTerm)))
	}
	if snap.Category != "" && snap.Category != model.CategoryAll {
		active = append(active, "type "+html.EscapeString(string(snap.Category)))
	}
	if snap.FavoritesOnly {
		active = append(active, "favorites only")
	}
	if len(active) > 0 {
		fmt.Fprintf(&b, "\nFilters: %s", strings.Join(active, ", "))
	}
	if len(snap.Items) > maxCards {
		fmt.Fprintf(&b, "\nShowing the first %d. Narrow the list with /find or /type.", maxCards)
	}

	if len(snap.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(FormatSources(snap.Sources, maxSummarySources))
	}
	return b.String()
}

// FormatNoMatches is shown when filters hide every grant.
func FormatNoMatches(snap session.Snapshot) string {
	if snap.Total == 0 {
		return fmt.Sprintf("No grants found for %s. Try again later with /retry.", html.EscapeString(snap.Selected))
	}
	return "<b>No grants found</b>\nTry broadening your search or adjusting your filters to find what you're looking for."
}

// FormatSearchError is the blocking error shown when a grant lookup fails.
func FormatSearchError(state string, err error) string {
	return fmt.Sprintf("<b>Could not load grants for %s.</b>\n%s\n\nPress Retry to run the same search again.",
		html.EscapeString(state), html.EscapeString(err.Error()))
}

// FormatSources formats citations as a numbered link list. A positive limit
// caps the list.
func FormatSources(sources []model.Source, limit int) string {
	if len(sources) == 0 {
		return "No sources were cited."
	}
	var b strings.Builder
	b.WriteString("<b>Sources</b>")
	shown := sources
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for i, s := range shown {
		fmt.Fprintf(&b, "\n%d. %s", i+1, formatLink(s))
	}
	if rest := len(sources) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n…and %d more, see /sources", rest)
	}
	return b.String()
}

// FormatNews formats the news panel.
func FormatNews(n session.News) string {
	state := html.EscapeString(n.State)
	switch {
	case n.Loading:
		return fmt.Sprintf("Loading news for %s…", state)
	case n.Err != nil:
		return fmt.Sprintf("<b>Latest news for %s</b>\nCould not load news: %s", state, html.EscapeString(n.Err.Error()))
	case len(n.Articles) == 0:
		return fmt.Sprintf("<b>Latest news for %s</b>\nNo recent news found.", state)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Latest news for %s</b>", state)
	for _, a := range n.Articles {
		fmt.Fprintf(&b, "\n• %s", formatLink(a))
	}
	return b.String()
}

// FormatCalendar formats the month grid in a monospace block.
func FormatCalendar(v calendar.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<pre>%s</pre>", html.EscapeString(v.Render()))
	switch n := v.DeadlineCount(); n {
	case 0:
		b.WriteString("\nNo deadlines this month.")
	case 1:
		b.WriteString("\n1 day with a deadline (•). Today is marked with &gt;.")
	default:
		fmt.Fprintf(&b, "\n%d days with deadlines (•). Today is marked with &gt;.", n)
	}
	return b.String()
}

func formatLink(s model.Source) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(s.URL), html.EscapeString(s.Title))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
