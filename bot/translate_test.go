package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/MomoTMR/MomoTMR-bot/llm"
)

func TestTranslateSelectionFlow(t *testing.T) {
	tg := &fakeAPI{}
	client := &fakeLLM{results: []llm.Result{{Text: "Hola"}}}
	b := newTestBot(t, tg, client)

	b.handleUpdate(context.Background(), commandUpdate(7, "translate"))
	s := b.sessions.Get(7)
	if mode, state := s.Snapshot(); mode != ModeTranslate || state != StateSelecting {
		t.Fatalf("expected translate/selecting, got %s/%s", mode, state)
	}

	b.handleUpdate(context.Background(), callbackUpdate(7, "languages_spain"))
	if s.Selection() != "spain" {
		t.Fatalf("language selection not stored: %q", s.Selection())
	}

	b.handleUpdate(context.Background(), textUpdate(7, "Привет"))
	req := client.lastRequest(t)
	if len(req.Messages) != 2 {
		t.Fatalf("translation requests are single-turn, got %d messages", len(req.Messages))
	}
	if req.Temperature != 0.3 {
		t.Errorf("translation should run at low temperature, got %v", req.Temperature)
	}
	if got := tg.lastText(t); !strings.Contains(got, "Hola") {
		t.Errorf("translated text missing from reply: %q", got)
	}
}

func TestTranslateUnknownLanguageReRendersSelection(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})

	b.handleUpdate(context.Background(), commandUpdate(7, "translate"))
	b.handleUpdate(context.Background(), callbackUpdate(7, "languages_klingon"))

	s := b.sessions.Get(7)
	if _, state := s.Snapshot(); state != StateSelecting {
		t.Errorf("unknown language must keep the selecting state")
	}
	if got := tg.lastText(t); !strings.Contains(got, "не найден") {
		t.Errorf("expected a not-found note, got %q", got)
	}
}

func TestTranslateChangeLanguage(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})

	b.handleUpdate(context.Background(), commandUpdate(7, "translate"))
	b.handleUpdate(context.Background(), callbackUpdate(7, "languages_germany"))
	b.handleUpdate(context.Background(), callbackUpdate(7, "change_language"))

	s := b.sessions.Get(7)
	if _, state := s.Snapshot(); state != StateSelecting {
		t.Errorf("change must return to selection")
	}
	if s.Selection() != "" {
		t.Errorf("change must clear the previous language")
	}
}
