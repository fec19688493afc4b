package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MomoTMR/MomoTMR-bot/llm"
	"github.com/MomoTMR/MomoTMR-bot/registry"
)

// fakeAPI records every chattable the bot sends and hands out increasing
// message ids.
type fakeAPI struct {
	mu     sync.Mutex
	sent   []tgbotapi.Chattable
	nextID int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		switch c := f.sent[i].(type) {
		case tgbotapi.MessageConfig:
			return c.Text
		case tgbotapi.EditMessageTextConfig:
			return c.Text
		}
	}
	t.Fatalf("no text message was sent")
	return ""
}

// fakeLLM returns canned results in order and records every request.
type fakeLLM struct {
	mu       sync.Mutex
	requests []llm.Request
	results  []llm.Result
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return llm.Result{}, f.err
	}
	if len(f.results) == 0 {
		return llm.Result{Text: "ok"}, nil
	}
	res := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return res, nil
}

func (f *fakeLLM) lastRequest(t *testing.T) llm.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatalf("no gateway request was made")
	}
	return f.requests[len(f.requests)-1]
}

func newTestBot(t *testing.T, tg *fakeAPI, client llm.Client) *Bot {
	t.Helper()
	personas, err := registry.Personas()
	if err != nil {
		t.Fatalf("load personas: %v", err)
	}
	languages, err := registry.Languages()
	if err != nil {
		t.Fatalf("load languages: %v", err)
	}
	topics, err := registry.QuizTopics()
	if err != nil {
		t.Fatalf("load quiz topics: %v", err)
	}

	cfg := Config{Model: "test-model", TempDir: t.TempDir()}
	cfg.applyDefaults()

	b := &Bot{
		api:       tg,
		llm:       client,
		sessions:  NewStore(),
		personas:  personas,
		languages: languages,
		topics:    topics,
		cfg:       cfg,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	b.routes = b.buildRoutes()
	return b
}

func commandUpdate(chatID int64, command string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      "/" + command,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}},
	}}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 10,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
	}}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 2,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
}

func TestStartCommandShowsMenu(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})

	b.handleUpdate(context.Background(), commandUpdate(7, "start"))

	msgs := tg.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0].Text, "Добро пожаловать") {
		t.Errorf("menu text mismatch: %q", msgs[0].Text)
	}
	kb, ok := msgs[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("menu should carry an inline keyboard")
	}
	if len(kb.InlineKeyboard) != 6 {
		t.Errorf("expected 6 menu rows, got %d", len(kb.InlineKeyboard))
	}
}

func TestUnknownCommandOutsideModeReplies(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})

	b.handleUpdate(context.Background(), commandUpdate(7, "frobnicate"))

	if got := tg.lastText(t); got != unknownCommandText {
		t.Errorf("expected unknown-command reply, got %q", got)
	}
}

func TestPlainTextOutsideModeIsIgnored(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})

	b.handleUpdate(context.Background(), textUpdate(7, "hello"))

	if len(tg.sent) != 0 {
		t.Errorf("expected no reply for unrouted text, got %d sends", len(tg.sent))
	}
}

func TestCallbackIsAcknowledged(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})

	b.handleUpdate(context.Background(), callbackUpdate(7, "main_menu"))

	found := false
	for _, c := range tg.sent {
		if _, ok := c.(tgbotapi.CallbackConfig); ok {
			found = true
		}
	}
	if !found {
		t.Errorf("callback query was not acknowledged")
	}
}

func TestCommandInterruptsActiveMode(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})

	b.handleUpdate(context.Background(), commandUpdate(7, "gpt"))
	s := b.sessions.Get(7)
	if mode, _ := s.Snapshot(); mode != ModeChat {
		t.Fatalf("expected chat mode, got %s", mode)
	}

	b.handleUpdate(context.Background(), commandUpdate(7, "quiz"))
	mode, state := s.Snapshot()
	if mode != ModeQuiz || state != StateSelecting {
		t.Errorf("expected quiz/selecting after /quiz, got %s/%s", mode, state)
	}
}

func TestSessionsAreIsolatedPerChat(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})

	b.handleUpdate(context.Background(), commandUpdate(1, "gpt"))
	b.handleUpdate(context.Background(), commandUpdate(2, "quiz"))

	if mode, _ := b.sessions.Get(1).Snapshot(); mode != ModeChat {
		t.Errorf("chat 1 should stay in chat mode, got %s", mode)
	}
	if mode, _ := b.sessions.Get(2).Snapshot(); mode != ModeQuiz {
		t.Errorf("chat 2 should be in quiz mode, got %s", mode)
	}
}
