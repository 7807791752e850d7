package bot

import (
	"fmt"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"grantbot/internal/annotation"
	"grantbot/internal/model"
	"grantbot/internal/session"
)

// Callback actions.
const (
	cbState     = "state"
	cbFavorite  = "fav"
	cbRate      = "rate"
	cbCalendar  = "cal"
	cbType      = "type"
	cbFavOnly   = "favonly"
	cbClear     = "clear"
	cbRetry     = "retry"
	cbNews      = "news"
	cbDashboard = "dash"
)

const statesPerRow = 3

func statesKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, s := range model.USStates {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(s, cbState+":"+s))
		if len(row) == statesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cardKeyboard(gen uint64, it session.Item) tgbotapi.InlineKeyboardMarkup {
	favLabel := "♡ Favorite"
	if it.Favorite {
		favLabel = "❤️ Favorited"
	}
	top := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(favLabel, fmt.Sprintf("%s:%d:%d", cbFavorite, gen, it.Index)),
	)
	if isWebURL(it.Grant.Website) {
		top = append(top, tgbotapi.NewInlineKeyboardButtonURL("Visit website", it.Grant.Website))
	}

	stars := make([]tgbotapi.InlineKeyboardButton, 0, annotation.MaxRating)
	for n := 1; n <= annotation.MaxRating; n++ {
		label := "☆"
		if n <= it.Rating {
			label = "★"
		}
		stars = append(stars, tgbotapi.NewInlineKeyboardButtonData(label,
			fmt.Sprintf("%s:%d:%d:%d", cbRate, gen, it.Index, n)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(top, stars)
}

func typeRow(active model.Category) []tgbotapi.InlineKeyboardButton {
	cats := append([]model.Category{model.CategoryAll}, model.Categories...)
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(cats))
	for _, c := range cats {
		label := string(c)
		if c == active || (active == "" && c == model.CategoryAll) {
			label = "• " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cbType+":"+string(c)))
	}
	return row
}

func summaryKeyboard(snap session.Snapshot) tgbotapi.InlineKeyboardMarkup {
	favLabel := fmt.Sprintf("♡ Favorites only (%d)", snap.FavoriteCount)
	if snap.FavoritesOnly {
		favLabel = "❤️ Showing favorites"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		typeRow(snap.Category),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(favLabel, cbFavOnly+":0"),
			tgbotapi.NewInlineKeyboardButtonData("Clear filters", cbClear+":0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Calendar & news", cbDashboard+":0"),
		),
	)
}

func typeKeyboard(active model.Category) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(typeRow(active))
}

func clearKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Clear all filters", cbClear+":0"),
	))
}

func retryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Retry", cbRetry+":0"),
	))
}

func newsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Refresh news", cbNews+":0"),
	))
}

func calendarKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Prev", cbCalendar+":-1"),
		tgbotapi.NewInlineKeyboardButtonData("Next »", cbCalendar+":1"),
	))
}

// isWebURL reports whether raw is an absolute http or https URL.
func isWebURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
