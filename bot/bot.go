// Package bot contains the conversation core: per-user sessions, the event
// dispatcher, and one state-machine handler per mode.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MomoTMR/MomoTMR-bot/llm"
	"github.com/MomoTMR/MomoTMR-bot/registry"
	"github.com/MomoTMR/MomoTMR-bot/speech"
)

// api is the slice of *tgbotapi.BotAPI the handlers actually use; tests
// substitute a fake.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Config struct {
	Model           string
	SpeechLanguage  string
	TTSVoice        string
	AssetsDir       string
	TempDir         string
	PollTimeout     time.Duration
	HandlerTimeout  time.Duration
	MenuReturnDelay time.Duration
	MaxConcurrency  int
}

func (c *Config) applyDefaults() {
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 60 * time.Second
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = 2 * time.Minute
	}
	if c.MenuReturnDelay <= 0 {
		c.MenuReturnDelay = 3 * time.Second
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 8
	}
	if c.SpeechLanguage == "" {
		c.SpeechLanguage = "ru"
	}
}

type Bot struct {
	tg        *tgbotapi.BotAPI
	api       api
	llm       llm.Client
	speech    speech.Service
	sessions  *Store
	personas  *registry.Registry
	languages *registry.Registry
	topics    *registry.Registry
	cfg       Config
	log       *slog.Logger
	http      *http.Client
	download  func(ctx context.Context, fileID, dest string) error
	routes    []route
}

func New(tg *tgbotapi.BotAPI, client llm.Client, sp speech.Service, cfg Config, log *slog.Logger) (*Bot, error) {
	cfg.applyDefaults()

	personas, err := registry.Personas()
	if err != nil {
		return nil, err
	}
	languages, err := registry.Languages()
	if err != nil {
		return nil, err
	}
	topics, err := registry.QuizTopics()
	if err != nil {
		return nil, err
	}

	b := &Bot{
		tg:        tg,
		api:       tg,
		llm:       client,
		speech:    sp,
		sessions:  NewStore(),
		personas:  personas,
		languages: languages,
		topics:    topics,
		cfg:       cfg,
		log:       log,
		http:      &http.Client{Timeout: 60 * time.Second},
	}
	b.download = b.downloadTelegramFile
	b.routes = b.buildRoutes()
	return b, nil
}

// Run long-polls Telegram until the context is cancelled. Each update runs
// in its own goroutine, bounded by a semaphore so a burst of slow gateway
// calls cannot pile up without limit.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.cfg.PollTimeout.Seconds())
	updates := b.tg.GetUpdatesChan(u)

	sem := make(chan struct{}, b.cfg.MaxConcurrency)

	b.log.Info("bot_polling",
		"poll_timeout", b.cfg.PollTimeout.String(),
		"max_concurrency", b.cfg.MaxConcurrency,
	)

	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			sem <- struct{}{}
			go func(update tgbotapi.Update) {
				defer func() {
					if r := recover(); r != nil {
						b.log.Error("handler_panic", "panic", fmt.Sprint(r))
					}
					<-sem
				}()
				hctx, cancel := context.WithTimeout(ctx, b.cfg.HandlerTimeout)
				defer cancel()
				b.handleUpdate(hctx, update)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ev, ok := b.eventFromUpdate(update)
	if !ok {
		return
	}

	s := b.sessions.Get(ev.chatID)
	// A fresh event always wins over a scheduled "return to menu".
	s.CancelReturn()

	mode, state := s.Snapshot()
	r := b.resolve(ev, mode, state)
	if r == nil {
		if ev.kind == eventCommand && mode == ModeNone {
			b.sendText(ev.chatID, unknownCommandText)
			return
		}
		b.log.Debug("update_unrouted",
			"kind", ev.kind.String(),
			"data", ev.data,
			"mode", mode.String(),
			"state", state.String(),
		)
		return
	}

	b.log.Debug("route_matched", "route", r.name, "chat_id", ev.chatID)
	r.fn(ctx, ev, s)
}

func (b *Bot) eventFromUpdate(update tgbotapi.Update) (event, bool) {
	if q := update.CallbackQuery; q != nil {
		// Stop the client-side spinner before doing any work.
		if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			b.log.Warn("callback_ack_error", "error", err.Error())
		}
		if q.Message == nil {
			return event{}, false
		}
		return event{
			kind:    eventCallback,
			data:    q.Data,
			chatID:  q.Message.Chat.ID,
			message: q.Message,
			query:   q,
		}, true
	}

	m := update.Message
	if m == nil {
		return event{}, false
	}
	switch {
	case m.IsCommand():
		return event{kind: eventCommand, data: m.Command(), chatID: m.Chat.ID, message: m}, true
	case m.Voice != nil:
		return event{kind: eventVoice, chatID: m.Chat.ID, message: m}, true
	case m.Text != "":
		return event{kind: eventText, data: m.Text, chatID: m.Chat.ID, message: m}, true
	default:
		return event{}, false
	}
}

func (b *Bot) downloadTelegramFile(ctx context.Context, fileID, dest string) error {
	f, err := b.tg.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Link(b.tg.Token), nil)
	if err != nil {
		return err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return nil
}
