package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"grantbot/internal/model"
	"grantbot/internal/session"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	c, ok := parseCallback(cb.Data)
	if !ok {
		b.answer(cb.ID, "")
		return
	}

	b.log.Info("callback",
		"action", c.action,
		"args", c.args,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch c.action {
	case cbState:
		b.answer(cb.ID, "")
		state, ok := model.LookupState(c.args[0])
		if !ok {
			return
		}
		b.search(ctx, chatID, state)
	case cbFavorite:
		b.callbackFavorite(ctx, cb, c)
	case cbRate:
		b.callbackRate(ctx, cb, c)
	case cbCalendar:
		b.answer(cb.ID, "")
		delta, err := c.intArg()
		if err != nil {
			return
		}
		snap := b.sessions.ShiftCalendar(ctx, chatID, delta)
		kb := calendarKeyboard()
		b.edit(chatID, cb.Message.MessageID, FormatCalendar(snap.Calendar(b.now())), &kb)
	case cbType:
		b.answer(cb.ID, "")
		if cat, ok := model.ParseCategory(c.args[0]); ok {
			b.setCategory(ctx, chatID, cat)
		}
	case cbFavOnly:
		b.answer(cb.ID, "")
		b.handleFavoritesOnly(ctx, chatID)
	case cbClear:
		b.answer(cb.ID, "")
		b.handleClear(ctx, chatID)
	case cbRetry:
		b.answer(cb.ID, "")
		b.handleRetry(ctx, chatID)
	case cbNews:
		b.answer(cb.ID, "")
		b.handleNews(ctx, chatID)
	case cbDashboard:
		b.answer(cb.ID, "")
		b.handleDashboard(ctx, chatID)
	default:
		b.answer(cb.ID, "")
	}
}

func (b *Bot) callbackFavorite(ctx context.Context, cb *tgbotapi.CallbackQuery, c callback) {
	gen, idx, _, err := c.grantRef(false)
	if err != nil {
		b.log.Warn("bad callback", "data", cb.Data, "error", err)
		b.answer(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID
	it, err := b.sessions.ToggleFavorite(ctx, chatID, gen, idx)
	if err != nil {
		b.answer(cb.ID, annotationErrorText(err))
		return
	}
	if it.Favorite {
		b.answer(cb.ID, "Added to favorites")
	} else {
		b.answer(cb.ID, "Removed from favorites")
	}
	b.refreshCard(ctx, cb, gen, it)
}

func (b *Bot) callbackRate(ctx context.Context, cb *tgbotapi.CallbackQuery, c callback) {
	gen, idx, stars, err := c.grantRef(true)
	if err != nil {
		b.log.Warn("bad callback", "data", cb.Data, "error", err)
		b.answer(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID
	it, err := b.sessions.RateFromClick(ctx, chatID, gen, idx, stars)
	if err != nil {
		b.answer(cb.ID, annotationErrorText(err))
		return
	}
	if it.Rating == 0 {
		b.answer(cb.ID, "Rating cleared")
	} else {
		b.answer(cb.ID, fmt.Sprintf("Rated %d/5", it.Rating))
	}
	b.refreshCard(ctx, cb, gen, it)
}

// refreshCard redraws the card message a button was pressed on. A card the
// current filters hide keeps its text and only gets new buttons.
func (b *Bot) refreshCard(ctx context.Context, cb *tgbotapi.CallbackQuery, gen uint64, it session.Item) {
	chatID := cb.Message.Chat.ID
	kb := cardKeyboard(gen, it)

	snap := b.sessions.Snapshot(ctx, chatID)
	for pos, visible := range snap.Items {
		if visible.Index == it.Index {
			b.edit(chatID, cb.Message.MessageID, FormatCard(pos+1, visible, snap.SearchTerm), &kb)
			return
		}
	}

	markup := tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID, kb)
	if _, err := b.api.Request(markup); err != nil {
		b.log.Error("edit reply markup", "chat_id", chatID, "error", err)
	}
}
