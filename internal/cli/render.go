package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"grantbot/internal/annotation"
	"grantbot/internal/filter"
	"grantbot/internal/model"
	"grantbot/internal/session"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorWarn    = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
)

type styles struct {
	plain     lipgloss.Style
	header    lipgloss.Style
	title     lipgloss.Style
	highlight lipgloss.Style
	category  lipgloss.Style
	badge     lipgloss.Style
	label     lipgloss.Style
	dim       lipgloss.Style
	stars     lipgloss.Style
	link      lipgloss.Style
}

// newStyles binds the styles to w, so output that is not a terminal
// comes out as plain text.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		plain:     r.NewStyle(),
		header:    r.NewStyle().Bold(true).Foreground(colorPrimary),
		title:     r.NewStyle().Bold(true),
		highlight: r.NewStyle().Underline(true).Foreground(colorAccent),
		category:  r.NewStyle().Foreground(colorGreen),
		badge:     r.NewStyle().Bold(true).Foreground(colorWarn),
		label:     r.NewStyle().Foreground(colorDim),
		dim:       r.NewStyle().Foreground(colorDim),
		stars:     r.NewStyle().Foreground(colorWarn),
		link:      r.NewStyle().Foreground(colorPrimary),
	}
}

func formatStars(rating int) string {
	rating = max(0, min(rating, annotation.MaxRating))
	return strings.Repeat("★", rating) + strings.Repeat("☆", annotation.MaxRating-rating)
}

func (a *app) highlighted(text, query string, base lipgloss.Style) string {
	return filter.Render(filter.Highlight(text, query),
		func(s string) string { return a.st.highlight.Render(s) },
		func(s string) string { return base.Render(s) })
}

func (a *app) renderSnapshot(snap session.Snapshot) {
	if snap.Total == 0 {
		fmt.Fprintf(a.out, "No grants found for %s.\n", snap.Selected)
		return
	}

	header := fmt.Sprintf("%d grants for %s", snap.Total, snap.Selected)
	if snap.Total == 1 {
		header = "1 grant for " + snap.Selected
	}
	if len(snap.Items) != snap.Total {
		header = fmt.Sprintf("Showing %d of %d grants for %s", len(snap.Items), snap.Total, snap.Selected)
	}
	fmt.Fprintln(a.out, a.st.header.Render(header))
	if len(snap.Items) == 0 {
		fmt.Fprintln(a.out, "No grants match the filters.")
		return
	}

	for pos, it := range snap.Items {
		fmt.Fprintln(a.out)
		a.renderItem(pos+1, it, snap.SearchTerm)
	}

	if len(snap.Sources) > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, a.st.header.Render("Sources"))
		for i, s := range snap.Sources {
			fmt.Fprintf(a.out, "%d. %s %s\n", i+1, s.Title, a.st.link.Render(s.URL))
		}
	}
}

func (a *app) renderItem(pos int, it session.Item, query string) {
	g := it.Grant

	line := fmt.Sprintf("%d. %s %s", pos, a.highlighted(g.Name, query, a.st.title), a.st.category.Render("["+string(g.Category)+"]"))
	if it.Favorite {
		line += " ♥"
	}
	if it.ClosingSoon {
		line += " " + a.st.badge.Render("Closing soon")
	}
	fmt.Fprintln(a.out, line)

	if g.Description != "" {
		fmt.Fprintf(a.out, "   %s\n", a.highlighted(g.Description, query, a.st.plain))
	}
	a.field("Award", g.AwardAmount, "")
	a.field("Eligibility", g.Eligibility, query)
	a.field("Deadline", g.Deadline, "")
	a.field("Website", g.Website, "")
	if it.Rating > 0 {
		fmt.Fprintf(a.out, "   %s %s\n", a.st.label.Render("Rating:"), a.st.stars.Render(formatStars(it.Rating)))
	}
}

func (a *app) field(label, value, query string) {
	if value == "" {
		return
	}
	fmt.Fprintf(a.out, "   %s %s\n", a.st.label.Render(label+":"), a.highlighted(value, query, a.st.plain))
}

func (a *app) renderNews(state string, articles []model.Source) {
	fmt.Fprintln(a.out, a.st.header.Render("Latest news for "+state))
	if len(articles) == 0 {
		fmt.Fprintln(a.out, "No recent news found.")
		return
	}
	for _, s := range articles {
		fmt.Fprintf(a.out, "• %s %s\n", s.Title, a.st.link.Render(s.URL))
	}
}
