package bot

import (
	"context"
	"errors"
	"fmt"
	"html"

	"grantbot/internal/model"
	"grantbot/internal/session"
)

const pickStateText = "Pick a state first with /states or /grants <state>."

func (b *Bot) handleStart(chatID int64) {
	b.SendMessage(chatID, `<b>Find Federal &amp; State Grants</b>

Select your state to begin your search for federal and state-specific small business grants.

Use /help for the full command reference.`, statesKeyboard())
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Searching:
/states — pick a state
/grants &lt;state&gt; — find grants for a state
/retry — run the last search again

Filtering (the grant list is never changed, only what you see):
/find &lt;words&gt; — show grants containing every word
/type &lt;all|federal|state|corporate|other&gt; — filter by funding source
/favorites — toggle showing favorites only
/clear — clear all filters
Any other text you send is used as the search term.

Results:
/list — show the current list
/sources — sources cited for the list
/rate &lt;n&gt; &lt;0-5&gt; — rate grant n of the list (0 clears)
/unrate &lt;n&gt; — clear the rating of grant n

Dashboard:
/calendar — deadlines calendar
/news — latest grant news for the state
/dashboard — calendar and news together`)
}

func (b *Bot) handleStates(chatID int64) {
	b.SendMessage(chatID, "Select a state:", statesKeyboard())
}

func (b *Bot) handleGrants(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.handleStates(chatID)
		return
	}
	state, ok := model.LookupState(args)
	if !ok {
		b.reply(chatID, fmt.Sprintf("Unknown state %q. Use /states to pick one.", html.EscapeString(args)))
		return
	}
	b.search(ctx, chatID, state)
}

func (b *Bot) handleRetry(ctx context.Context, chatID int64) {
	if b.sessions.Selected(ctx, chatID) == "" {
		b.reply(chatID, pickStateText)
		return
	}
	b.search(ctx, chatID, "")
}

// search starts a grant lookup. An empty state repeats the last search.
func (b *Bot) search(ctx context.Context, chatID int64, state string) {
	label := state
	if label == "" {
		label = b.sessions.Selected(ctx, chatID)
	}
	b.reply(chatID, fmt.Sprintf("Searching for grants in %s…", html.EscapeString(label)))

	b.spawn(func() {
		snap, ok := b.sessions.Search(ctx, chatID, state)
		if !ok {
			if snap.Selected == "" {
				b.reply(chatID, pickStateText)
			}
			return
		}
		b.renderResults(chatID, snap)
	})
}

// renderResults sends the listing for snap: an error with a Retry button,
// a no-match notice, or a summary followed by one card per visible grant.
func (b *Bot) renderResults(chatID int64, snap session.Snapshot) {
	switch snap.Status {
	case session.StatusInitial:
		b.reply(chatID, pickStateText)
		return
	case session.StatusLoading:
		b.reply(chatID, fmt.Sprintf("Still searching for grants in %s…", html.EscapeString(snap.Selected)))
		return
	case session.StatusError:
		b.SendMessage(chatID, FormatSearchError(snap.Selected, snap.Err), retryKeyboard())
		return
	}

	if len(snap.Items) == 0 {
		if snap.Total == 0 {
			b.SendMessage(chatID, FormatNoMatches(snap), retryKeyboard())
			return
		}
		b.SendMessage(chatID, FormatNoMatches(snap), clearKeyboard())
		return
	}

	b.SendMessage(chatID, FormatSummary(snap), summaryKeyboard(snap))
	for i, it := range snap.Items {
		if i == maxCards {
			break
		}
		b.SendMessage(chatID, FormatCard(i+1, it, snap.SearchTerm), cardKeyboard(snap.Generation, it))
	}
}

// requireResults replies with a hint and returns false when there is no
// grant list to work on.
func (b *Bot) requireResults(chatID int64, snap session.Snapshot) bool {
	if snap.Status == session.StatusSuccess {
		return true
	}
	b.renderResults(chatID, snap)
	return false
}

// handleText takes free text as search input. Before any search, a state
// name starts a search for that state.
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	snap := b.sessions.Snapshot(ctx, chatID)
	if snap.Status != session.StatusSuccess {
		if state, ok := model.LookupState(text); ok {
			b.search(ctx, chatID, state)
			return
		}
		b.renderResults(chatID, snap)
		return
	}
	b.sessions.Type(ctx, chatID, text, func(s session.Snapshot) {
		b.spawn(func() { b.renderResults(chatID, s) })
	})
}

func (b *Bot) handleFind(ctx context.Context, chatID int64, args string) {
	if !b.requireResults(chatID, b.sessions.Snapshot(ctx, chatID)) {
		return
	}
	b.renderResults(chatID, b.sessions.Find(ctx, chatID, args))
}

func (b *Bot) handleType(ctx context.Context, chatID int64, args string) {
	snap := b.sessions.Snapshot(ctx, chatID)
	if args == "" {
		b.SendMessage(chatID, "Filter by funding source:", typeKeyboard(snap.Category))
		return
	}
	c, ok := model.ParseCategory(args)
	if !ok {
		b.reply(chatID, "Usage: /type all|federal|state|corporate|other")
		return
	}
	b.setCategory(ctx, chatID, c)
}

func (b *Bot) setCategory(ctx context.Context, chatID int64, c model.Category) {
	if !b.requireResults(chatID, b.sessions.Snapshot(ctx, chatID)) {
		return
	}
	b.renderResults(chatID, b.sessions.SetCategory(ctx, chatID, c))
}

func (b *Bot) handleFavoritesOnly(ctx context.Context, chatID int64) {
	if !b.requireResults(chatID, b.sessions.Snapshot(ctx, chatID)) {
		return
	}
	b.renderResults(chatID, b.sessions.ToggleFavoritesOnly(ctx, chatID))
}

func (b *Bot) handleClear(ctx context.Context, chatID int64) {
	if !b.requireResults(chatID, b.sessions.Snapshot(ctx, chatID)) {
		return
	}
	b.renderResults(chatID, b.sessions.ClearFilters(ctx, chatID))
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	b.renderResults(chatID, b.sessions.Snapshot(ctx, chatID))
}

func (b *Bot) handleSources(ctx context.Context, chatID int64) {
	snap := b.sessions.Snapshot(ctx, chatID)
	if !b.requireResults(chatID, snap) {
		return
	}
	b.reply(chatID, FormatSources(snap.Sources, 0))
}

func (b *Bot) handleRate(ctx context.Context, chatID int64, args string) {
	pos, stars, err := ParseRateArgs(args)
	if err != nil {
		b.reply(chatID, html.EscapeString(err.Error()))
		return
	}
	b.rateAt(ctx, chatID, pos, stars)
}

func (b *Bot) handleUnrate(ctx context.Context, chatID int64, args string) {
	pos, err := ParsePosition(args)
	if err != nil {
		b.reply(chatID, "Usage: /unrate &lt;number&gt;")
		return
	}
	b.rateAt(ctx, chatID, pos, 0)
}

// rateAt sets the rating of the grant at list position pos. Unlike the star
// buttons, repeating the same rating keeps it.
func (b *Bot) rateAt(ctx context.Context, chatID int64, pos, stars int) {
	snap := b.sessions.Snapshot(ctx, chatID)
	if !b.requireResults(chatID, snap) {
		return
	}
	target, ok := snap.Item(pos)
	if !ok {
		b.reply(chatID, fmt.Sprintf("No grant #%d in the current list. Use /list to see it.", pos))
		return
	}

	var it session.Item
	var err error
	if stars == 0 {
		it, err = b.sessions.ClearRating(ctx, chatID, snap.Generation, target.Index)
	} else {
		it, err = b.sessions.SetRating(ctx, chatID, snap.Generation, target.Index, stars)
	}
	if err != nil {
		b.reply(chatID, annotationErrorText(err))
		return
	}

	name := html.EscapeString(it.Grant.Name)
	if it.Rating == 0 {
		b.reply(chatID, fmt.Sprintf("Rating cleared for <b>%s</b>.", name))
		return
	}
	b.reply(chatID, fmt.Sprintf("Rated <b>%s</b> %s", name, FormatStars(it.Rating)))
}

func (b *Bot) handleNews(ctx context.Context, chatID int64) {
	if b.sessions.Selected(ctx, chatID) == "" {
		b.reply(chatID, pickStateText)
		return
	}
	b.spawn(func() {
		snap, ok := b.sessions.News(ctx, chatID)
		if !ok {
			return
		}
		b.SendMessage(chatID, FormatNews(snap.News), newsKeyboard())
	})
}

func (b *Bot) handleCalendar(ctx context.Context, chatID int64) {
	snap := b.sessions.Snapshot(ctx, chatID)
	b.SendMessage(chatID, FormatCalendar(snap.Calendar(b.now())), calendarKeyboard())
}

// handleDashboard shows the deadline calendar of the visible grants and the
// news panel.
func (b *Bot) handleDashboard(ctx context.Context, chatID int64) {
	if !b.requireResults(chatID, b.sessions.Snapshot(ctx, chatID)) {
		return
	}
	b.handleCalendar(ctx, chatID)
	b.handleNews(ctx, chatID)
}

func annotationErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrStale):
		return "These results are out of date. Use /list to see the current ones."
	case errors.Is(err, session.ErrUnknownGrant):
		return "That grant is no longer in the list."
	default:
		return html.EscapeString(err.Error())
	}
}
