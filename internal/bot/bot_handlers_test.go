package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"grantbot/internal/annotation"
	"grantbot/internal/calendar"
	"grantbot/internal/config"
	"grantbot/internal/model"
	"grantbot/internal/session"
	"grantbot/internal/storage"
)

// --- mocks ---

type sentMsg struct {
	ChatID int64
	Text   string
	Markup any
}

type mockAPI struct {
	mu        sync.Mutex
	sent      []sentMsg
	edits     []tgbotapi.EditMessageTextConfig
	markups   []tgbotapi.EditMessageReplyMarkupConfig
	callbacks []tgbotapi.CallbackConfig
	updates   chan tgbotapi.Update
	stopped   bool
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.mu.Lock()
		m.sent = append(m.sent, sentMsg{ChatID: msg.ChatID, Text: msg.Text, Markup: msg.ReplyMarkup})
		m.mu.Unlock()
	}
	return tgbotapi.Message{}, nil
}

func (m *mockAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.EditMessageTextConfig:
		m.edits = append(m.edits, v)
	case tgbotapi.EditMessageReplyMarkupConfig:
		m.markups = append(m.markups, v)
	case tgbotapi.CallbackConfig:
		m.callbacks = append(m.callbacks, v)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updates == nil {
		m.updates = make(chan tgbotapi.Update)
	}
	return m.updates
}

func (m *mockAPI) StopReceivingUpdates() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *mockAPI) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.Text
	}
	return out
}

func (m *mockAPI) lastText() string {
	texts := m.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (m *mockAPI) lastSent() sentMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMsg{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *mockAPI) lastCallbackText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.callbacks) == 0 {
		return ""
	}
	return m.callbacks[len(m.callbacks)-1].Text
}

func (m *mockAPI) lastEdit() (tgbotapi.EditMessageTextConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.edits) == 0 {
		return tgbotapi.EditMessageTextConfig{}, false
	}
	return m.edits[len(m.edits)-1], true
}

func (m *mockAPI) reset() {
	m.mu.Lock()
	m.sent = nil
	m.edits = nil
	m.markups = nil
	m.callbacks = nil
	m.mu.Unlock()
}

type fakeResearcher struct {
	mu      sync.Mutex
	grants  map[string]model.SearchResult
	news    map[string][]model.Source
	err     error
	newsErr error
}

func (f *fakeResearcher) Grants(_ context.Context, state string) (model.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.SearchResult{}, f.err
	}
	return f.grants[state], nil
}

func (f *fakeResearcher) News(_ context.Context, state string) ([]model.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.newsErr != nil {
		return nil, f.newsErr
	}
	return f.news[state], nil
}

func (f *fakeResearcher) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// --- helpers ---

const testChat int64 = 100

func texasResult() model.SearchResult {
	return model.SearchResult{
		Grants: []model.Grant{
			{Name: "SBIR Phase I", Category: model.CategoryFederal, Description: "Research funding", Deadline: "Rolling"},
			{Name: "Texas Enterprise Fund", Category: model.CategoryState, Description: "Job creation incentives", Deadline: "Varies"},
			{Name: "Women Owned Business Grant", Category: model.CategoryCorporate, Eligibility: "Women owned", Deadline: "Rolling"},
		},
		Sources: []model.Source{{URL: "https://gov.texas.gov", Title: "Texas Gov"}},
	}
}

func newTestBot(t *testing.T) (*Bot, *mockAPI, *fakeResearcher) {
	t.Helper()

	st, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	research := &fakeResearcher{
		grants: map[string]model.SearchResult{"Texas": texasResult()},
		news: map[string][]model.Source{"Texas": {
			{URL: "https://news.example.com/1", Title: "New fund opens"},
		}},
	}
	sessions := session.NewManager(research, annotation.NewStore(st, log), 50*time.Millisecond, log)
	t.Cleanup(sessions.Close)

	api := &mockAPI{}
	b := &Bot{
		api:      api,
		sessions: sessions,
		cfg:      &config.Config{},
		log:      log,
		now:      time.Now,
		spawn:    func(f func()) { f() },
	}
	return b, api, research
}

func commandUpdate(userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: testChat},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: userID},
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 42,
			Chat:      &tgbotapi.Chat{ID: testChat},
		},
	}}
}

func send(b *Bot, text string) {
	b.handleUpdate(context.Background(), commandUpdate(1, text))
}

func press(b *Bot, data string) {
	b.handleUpdate(context.Background(), callbackUpdate(1, data))
}

// buttonData returns the callback data of every button in markup.
func buttonData(t *testing.T, markup any) []string {
	t.Helper()
	kb, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("markup is %T, want InlineKeyboardMarkup", markup)
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				out = append(out, *btn.CallbackData)
			}
		}
	}
	return out
}

// searchTexas runs /grants Texas and clears the recorded traffic.
func searchTexas(t *testing.T, b *Bot, api *mockAPI) []sentMsg {
	t.Helper()
	send(b, "/grants Texas")
	api.mu.Lock()
	sent := append([]sentMsg(nil), api.sent...)
	api.mu.Unlock()
	api.reset()
	if len(sent) != 5 {
		t.Fatalf("search sent %d messages, want 5", len(sent))
	}
	return sent
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// --- tests ---

func TestHandleStart(t *testing.T) {
	b, api, _ := newTestBot(t)

	send(b, "/start")

	got := api.lastSent()
	if !strings.Contains(got.Text, "Find Federal &amp; State Grants") {
		t.Errorf("unexpected start text: %q", got.Text)
	}
	data := buttonData(t, got.Markup)
	if diff := cmp.Diff(len(model.USStates), len(data)); diff != "" {
		t.Errorf("state button count (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("state:Alabama", data[0]); diff != "" {
		t.Errorf("first button (-want +got):\n%s", diff)
	}
}

func TestHandleHelpAndUnknown(t *testing.T) {
	b, api, _ := newTestBot(t)

	send(b, "/help")
	if !strings.Contains(api.lastText(), "/grants &lt;state&gt;") {
		t.Errorf("help text missing /grants: %q", api.lastText())
	}

	send(b, "/bogus")
	if diff := cmp.Diff("Unknown command. Use /help for a list of commands.", api.lastText()); diff != "" {
		t.Errorf("unknown command (-want +got):\n%s", diff)
	}
}

func TestHandleGrants(t *testing.T) {
	t.Run("unknown state", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		send(b, "/grants Atlantis")
		if diff := cmp.Diff(`Unknown state "Atlantis". Use /states to pick one.`, api.lastText()); diff != "" {
			t.Errorf("reply (-want +got):\n%s", diff)
		}
	})

	t.Run("no state shows picker", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		send(b, "/grants")
		if diff := cmp.Diff("Select a state:", api.lastText()); diff != "" {
			t.Errorf("reply (-want +got):\n%s", diff)
		}
	})

	t.Run("lists results", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		sent := searchTexas(t, b, api)

		if diff := cmp.Diff("Searching for grants in Texas…", sent[0].Text); diff != "" {
			t.Errorf("progress (-want +got):\n%s", diff)
		}
		want := "<b>3 grants for Texas</b>\n\n<b>Sources</b>\n1. <a href=\"https://gov.texas.gov\">Texas Gov</a>"
		if diff := cmp.Diff(want, sent[1].Text); diff != "" {
			t.Errorf("summary (-want +got):\n%s", diff)
		}
		for i, name := range []string{"SBIR Phase I", "Texas Enterprise Fund", "Women Owned Business Grant"} {
			prefix := FormatCard(i+1, session.Item{Grant: model.Grant{Name: name}}, "")
			prefix, _, _ = strings.Cut(prefix, "\n")
			if !strings.HasPrefix(sent[i+2].Text, prefix) {
				t.Errorf("card %d = %q, want prefix %q", i+1, sent[i+2].Text, prefix)
			}
		}
	})

	t.Run("case insensitive state", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		send(b, "/grants  texas ")
		if !strings.Contains(strings.Join(api.texts(), "\n"), "<b>3 grants for Texas</b>") {
			t.Errorf("search did not run: %v", api.texts())
		}
	})
}

func TestSearchErrorOffersRetry(t *testing.T) {
	b, api, research := newTestBot(t)
	research.fail(errors.New("quota <exceeded>"))

	send(b, "/grants Texas")

	got := api.lastSent()
	want := "<b>Could not load grants for Texas.</b>\nquota &lt;exceeded&gt;\n\nPress Retry to run the same search again."
	if diff := cmp.Diff(want, got.Text); diff != "" {
		t.Errorf("error text (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"retry:0"}, buttonData(t, got.Markup)); diff != "" {
		t.Errorf("error keyboard (-want +got):\n%s", diff)
	}

	research.fail(nil)
	api.reset()
	press(b, "retry:0")

	if !strings.Contains(strings.Join(api.texts(), "\n"), "<b>3 grants for Texas</b>") {
		t.Errorf("retry did not list grants: %v", api.texts())
	}
}

func TestRetryWithoutState(t *testing.T) {
	b, api, _ := newTestBot(t)
	send(b, "/retry")
	if diff := cmp.Diff(pickStateText, api.lastText()); diff != "" {
		t.Errorf("reply (-want +got):\n%s", diff)
	}
}

func TestFilterCommands(t *testing.T) {
	b, api, _ := newTestBot(t)
	searchTexas(t, b, api)

	send(b, "/find women")
	texts := api.texts()
	if len(texts) != 2 {
		t.Fatalf("find sent %d messages, want 2: %v", len(texts), texts)
	}
	if !strings.HasPrefix(texts[0], "<b>Showing 1 of 3 grants for Texas</b>\nFilters: search \"women\"") {
		t.Errorf("summary = %q", texts[0])
	}
	if !strings.HasPrefix(texts[1], "1. <b><u>Women</u> Owned Business Grant</b>") {
		t.Errorf("card = %q", texts[1])
	}

	api.reset()
	send(b, "/type state")
	got := api.lastSent()
	if !strings.HasPrefix(got.Text, "<b>No grants found</b>") {
		t.Errorf("no-match text = %q", got.Text)
	}
	if diff := cmp.Diff([]string{"clear:0"}, buttonData(t, got.Markup)); diff != "" {
		t.Errorf("no-match keyboard (-want +got):\n%s", diff)
	}

	api.reset()
	press(b, "clear:0")
	if !strings.Contains(strings.Join(api.texts(), "\n"), "<b>3 grants for Texas</b>") {
		t.Errorf("clear did not restore the list: %v", api.texts())
	}

	api.reset()
	press(b, "type:State")
	texts = api.texts()
	if len(texts) != 2 || !strings.HasPrefix(texts[0], "<b>Showing 1 of 3 grants for Texas</b>\nFilters: type State") {
		t.Errorf("type filter = %v", texts)
	}
}

func TestTypeCommand(t *testing.T) {
	b, api, _ := newTestBot(t)

	send(b, "/type")
	got := api.lastSent()
	data := buttonData(t, got.Markup)
	if diff := cmp.Diff("type:All", data[0]); diff != "" {
		t.Errorf("first type button (-want +got):\n%s", diff)
	}

	send(b, "/type lottery")
	if diff := cmp.Diff("Usage: /type all|federal|state|corporate|other", api.lastText()); diff != "" {
		t.Errorf("reply (-want +got):\n%s", diff)
	}

	send(b, "/type federal")
	if diff := cmp.Diff(pickStateText, api.lastText()); diff != "" {
		t.Errorf("before search (-want +got):\n%s", diff)
	}
}

func TestFilterBeforeSearch(t *testing.T) {
	for _, cmd := range []string{"/find grant", "/favorites", "/clear", "/list", "/sources", "/rate 1 3", "/dashboard"} {
		t.Run(cmd, func(t *testing.T) {
			b, api, _ := newTestBot(t)
			send(b, cmd)
			if diff := cmp.Diff(pickStateText, api.lastText()); diff != "" {
				t.Errorf("reply (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFavoriteCallback(t *testing.T) {
	b, api, _ := newTestBot(t)
	sent := searchTexas(t, b, api)
	favData := buttonData(t, sent[2].Markup)[0]

	press(b, favData)

	if diff := cmp.Diff("Added to favorites", api.lastCallbackText()); diff != "" {
		t.Errorf("ack (-want +got):\n%s", diff)
	}
	edit, ok := api.lastEdit()
	if !ok {
		t.Fatal("card was not edited")
	}
	if !strings.HasPrefix(edit.Text, "1. <b>SBIR Phase I</b> ❤️") {
		t.Errorf("edited card = %q", edit.Text)
	}
	if diff := cmp.Diff(42, edit.MessageID); diff != "" {
		t.Errorf("edited message (-want +got):\n%s", diff)
	}
	if edit.ReplyMarkup == nil || edit.ReplyMarkup.InlineKeyboard[0][0].Text != "❤️ Favorited" {
		t.Errorf("favorite button not updated: %+v", edit.ReplyMarkup)
	}

	api.reset()
	send(b, "/favorites")
	texts := api.texts()
	if len(texts) != 2 || !strings.HasPrefix(texts[0], "<b>Showing 1 of 3 grants for Texas</b>\nFilters: favorites only") {
		t.Errorf("favorites only = %v", texts)
	}

	// Unfavoriting hides the card, so only its buttons change.
	api.reset()
	press(b, favData)
	if diff := cmp.Diff("Removed from favorites", api.lastCallbackText()); diff != "" {
		t.Errorf("ack (-want +got):\n%s", diff)
	}
	api.mu.Lock()
	edits, markups := len(api.edits), len(api.markups)
	api.mu.Unlock()
	if edits != 0 || markups != 1 {
		t.Errorf("edits = %d, markup edits = %d, want 0 and 1", edits, markups)
	}
}

func TestRateCallback(t *testing.T) {
	b, api, _ := newTestBot(t)
	sent := searchTexas(t, b, api)
	data := buttonData(t, sent[3].Markup)
	// fav, then stars 1..5.
	three := data[3]

	press(b, three)
	if diff := cmp.Diff("Rated 3/5", api.lastCallbackText()); diff != "" {
		t.Errorf("ack (-want +got):\n%s", diff)
	}
	edit, ok := api.lastEdit()
	if !ok || !strings.Contains(edit.Text, "Your rating: ★★★☆☆") {
		t.Errorf("edited card = %q", edit.Text)
	}

	press(b, three)
	if diff := cmp.Diff("Rating cleared", api.lastCallbackText()); diff != "" {
		t.Errorf("second ack (-want +got):\n%s", diff)
	}
	edit, _ = api.lastEdit()
	if strings.Contains(edit.Text, "Your rating") {
		t.Errorf("rating still shown: %q", edit.Text)
	}
}

func TestStaleCallback(t *testing.T) {
	b, api, _ := newTestBot(t)
	sent := searchTexas(t, b, api)
	favData := buttonData(t, sent[2].Markup)[0]

	send(b, "/retry")
	api.reset()
	press(b, favData)

	if diff := cmp.Diff("These results are out of date. Use /list to see the current ones.", api.lastCallbackText()); diff != "" {
		t.Errorf("ack (-want +got):\n%s", diff)
	}
	if _, ok := api.lastEdit(); ok {
		t.Error("stale press edited a card")
	}
}

func TestRateCommands(t *testing.T) {
	b, api, _ := newTestBot(t)
	searchTexas(t, b, api)

	tests := []struct {
		cmd  string
		want string
	}{
		{cmd: "/rate 2 4", want: "Rated <b>Texas Enterprise Fund</b> ★★★★☆"},
		{cmd: "/rate 2 4", want: "Rated <b>Texas Enterprise Fund</b> ★★★★☆"},
		{cmd: "/unrate 2", want: "Rating cleared for <b>Texas Enterprise Fund</b>."},
		{cmd: "/rate 9 4", want: "No grant #9 in the current list. Use /list to see it."},
		{cmd: "/rate 1 7", want: "rating must be between 0 and 5"},
		{cmd: "/unrate x", want: "Usage: /unrate &lt;number&gt;"},
	}
	for _, tt := range tests {
		send(b, tt.cmd)
		if diff := cmp.Diff(tt.want, api.lastText()); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.cmd, diff)
		}
	}
}

func TestSourcesCommand(t *testing.T) {
	b, api, _ := newTestBot(t)
	searchTexas(t, b, api)

	send(b, "/sources")
	want := "<b>Sources</b>\n1. <a href=\"https://gov.texas.gov\">Texas Gov</a>"
	if diff := cmp.Diff(want, api.lastText()); diff != "" {
		t.Errorf("sources (-want +got):\n%s", diff)
	}
}

func TestCalendar(t *testing.T) {
	b, api, _ := newTestBot(t)

	send(b, "/calendar")
	got := api.lastSent()
	month := calendar.MonthOf(time.Now())
	if !strings.HasPrefix(got.Text, "<pre>"+month.String()) {
		t.Errorf("calendar = %q", got.Text)
	}
	if diff := cmp.Diff([]string{"cal:-1", "cal:1"}, buttonData(t, got.Markup)); diff != "" {
		t.Errorf("calendar keyboard (-want +got):\n%s", diff)
	}

	press(b, "cal:1")
	edit, ok := api.lastEdit()
	if !ok {
		t.Fatal("calendar was not edited")
	}
	if !strings.HasPrefix(edit.Text, "<pre>"+month.Next().String()) {
		t.Errorf("shifted calendar = %q", edit.Text)
	}
}

func TestNews(t *testing.T) {
	b, api, research := newTestBot(t)

	send(b, "/news")
	if diff := cmp.Diff(pickStateText, api.lastText()); diff != "" {
		t.Errorf("before search (-want +got):\n%s", diff)
	}
	api.reset()

	searchTexas(t, b, api)
	send(b, "/news")
	want := "<b>Latest news for Texas</b>\n• <a href=\"https://news.example.com/1\">New fund opens</a>"
	got := api.lastSent()
	if diff := cmp.Diff(want, got.Text); diff != "" {
		t.Errorf("news (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"news:0"}, buttonData(t, got.Markup)); diff != "" {
		t.Errorf("news keyboard (-want +got):\n%s", diff)
	}

	research.mu.Lock()
	research.newsErr = errors.New("feed down")
	research.mu.Unlock()
	press(b, "news:0")
	want = "<b>Latest news for Texas</b>\nCould not load news: feed down"
	if diff := cmp.Diff(want, api.lastText()); diff != "" {
		t.Errorf("news error (-want +got):\n%s", diff)
	}
}

func TestDashboard(t *testing.T) {
	b, api, _ := newTestBot(t)
	searchTexas(t, b, api)

	press(b, "dash:0")
	texts := api.texts()
	if len(texts) != 2 {
		t.Fatalf("dashboard sent %d messages, want 2: %v", len(texts), texts)
	}
	if !strings.HasPrefix(texts[0], "<pre>") {
		t.Errorf("calendar = %q", texts[0])
	}
	if !strings.HasPrefix(texts[1], "<b>Latest news for Texas</b>") {
		t.Errorf("news = %q", texts[1])
	}
}

func TestFreeText(t *testing.T) {
	b, api, _ := newTestBot(t)

	send(b, "hello")
	if diff := cmp.Diff(pickStateText, api.lastText()); diff != "" {
		t.Errorf("before search (-want +got):\n%s", diff)
	}

	// A state name starts a search.
	send(b, "texas")
	if !strings.Contains(strings.Join(api.texts(), "\n"), "<b>3 grants for Texas</b>") {
		t.Fatalf("state name did not search: %v", api.texts())
	}

	api.reset()
	send(b, "ent")
	send(b, "enterprise")
	waitFor(t, func() bool { return len(api.texts()) >= 2 })
	time.Sleep(100 * time.Millisecond)

	texts := api.texts()
	if len(texts) != 2 {
		t.Fatalf("debounced input sent %d messages, want 2: %v", len(texts), texts)
	}
	if !strings.HasPrefix(texts[0], "<b>Showing 1 of 3 grants for Texas</b>\nFilters: search \"enterprise\"") {
		t.Errorf("summary = %q", texts[0])
	}
}

func TestAccessDenied(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.cfg = &config.Config{AllowedUsers: []int64{1}}

	b.handleUpdate(context.Background(), commandUpdate(2, "/grants Texas"))
	if diff := cmp.Diff([]string{"Access denied."}, api.texts()); diff != "" {
		t.Errorf("message reply (-want +got):\n%s", diff)
	}

	b.handleUpdate(context.Background(), callbackUpdate(2, "state:Texas"))
	if diff := cmp.Diff("Access denied.", api.lastCallbackText()); diff != "" {
		t.Errorf("callback ack (-want +got):\n%s", diff)
	}
	if len(api.texts()) != 1 {
		t.Errorf("callback triggered messages: %v", api.texts())
	}

	send(b, "/help")
	if !strings.Contains(api.lastText(), "/grants") {
		t.Errorf("allowed user was denied: %q", api.lastText())
	}
}

func TestHandleUpdateRecoversFromPanic(t *testing.T) {
	b, _, _ := newTestBot(t)
	b.sessions = nil

	// Must not panic.
	send(b, "/list")
}

func TestRun(t *testing.T) {
	b, api, _ := newTestBot(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.updates != nil
	})
	api.updates <- commandUpdate(1, "/help")
	waitFor(t, func() bool { return len(api.texts()) == 1 })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if !api.stopped {
		t.Error("StopReceivingUpdates was not called")
	}
}

func TestGoSpawnAfterStop(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.spawn = b.goSpawn
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	waitFor(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.updates != nil
	})

	release := make(chan struct{})
	var finished atomic.Bool
	b.goSpawn(func() {
		<-release
		finished.Store(true)
	})

	cancel()
	select {
	case <-done:
		t.Fatal("Run returned before running work finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !finished.Load() {
		t.Error("running work was not awaited")
	}

	var ran atomic.Bool
	b.goSpawn(func() { ran.Store(true) })
	time.Sleep(20 * time.Millisecond)
	if ran.Load() {
		t.Error("work spawned after shutdown ran")
	}
}
