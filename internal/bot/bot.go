package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"grantbot/internal/config"
	"grantbot/internal/session"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram front end. Every chat is a separate session.
type Bot struct {
	api      telegramAPI
	sessions *session.Manager
	cfg      *config.Config
	log      *slog.Logger
	now      func() time.Time

	// spawn runs AI lookups and debounced renders off the update loop.
	spawn func(func())
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// New creates a Bot with the given Telegram token, sessions, and config.
func New(token string, sessions *session.Manager, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := &Bot{
		api:      api,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
	b.spawn = b.goSpawn
	return b, nil
}

// goSpawn runs fn on a tracked goroutine. Work spawned after Run has
// begun shutting down is dropped.
func (b *Bot) goSpawn(fn func()) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		defer b.recoverPanic("lookup")
		fn()
	}()
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled
// and running lookups have finished.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.sessions.Close()
			b.mu.Lock()
			b.stopped = true
			b.mu.Unlock()
			b.wg.Wait()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer b.recoverPanic("update")

	if cb := update.CallbackQuery; cb != nil {
		if cb.Message == nil {
			return
		}
		if !b.cfg.IsUserAllowed(cb.From.ID) {
			b.answer(cb.ID, "Access denied.")
			return
		}
		b.handleCallback(ctx, cb)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.cfg.IsUserAllowed(msg.From.ID) {
		b.reply(msg.Chat.ID, "Access denied.")
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if text := strings.TrimSpace(msg.Text); text != "" {
		b.handleText(ctx, msg.Chat.ID, text)
	}
}

func (b *Bot) recoverPanic(where string) {
	if r := recover(); r != nil {
		b.log.Error("recovered from panic", "where", where, "panic", r)
	}
}

// SendMessage sends an HTML message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text, nil)
}

func (b *Bot) edit(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	var cfg tgbotapi.EditMessageTextConfig
	if markup != nil {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		cfg = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	cfg.ParseMode = tgbotapi.ModeHTML
	cfg.DisableWebPagePreview = true
	if _, err := b.api.Request(cfg); err != nil {
		b.log.Error("edit message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Error("send callback ack", "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "states":
		b.handleStates(chatID)
	case "grants":
		b.handleGrants(ctx, chatID, args)
	case "retry":
		b.handleRetry(ctx, chatID)
	case "find":
		b.handleFind(ctx, chatID, args)
	case "type":
		b.handleType(ctx, chatID, args)
	case "favorites":
		b.handleFavoritesOnly(ctx, chatID)
	case "clear":
		b.handleClear(ctx, chatID)
	case "list":
		b.handleList(ctx, chatID)
	case "sources":
		b.handleSources(ctx, chatID)
	case "rate":
		b.handleRate(ctx, chatID, args)
	case "unrate":
		b.handleUnrate(ctx, chatID, args)
	case "news":
		b.handleNews(ctx, chatID)
	case "calendar":
		b.handleCalendar(ctx, chatID)
	case "dashboard":
		b.handleDashboard(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
