package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MomoTMR/MomoTMR-bot/llm"
	"github.com/MomoTMR/MomoTMR-bot/registry"
)

func personaSelectKeyboard(entries []registry.Entry) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries)+1)
	for _, e := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(e.Emoji+" "+e.Name, "personality_"+e.Key),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Вернуться в меню", "main_menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func personaChatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Сменить личность", "change_personality")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Вернуться в меню", "finish_talk")),
	)
}

// startPersona is /personality: pick a persona, then talk to it.
func (b *Bot) startPersona(ctx context.Context, ev event, s *Session) {
	s.Enter(ModePersona, StateSelecting)
	b.renderPersonaSelection(ev, s, "")
}

func (b *Bot) renderPersonaSelection(ev event, s *Session, note string) {
	text := personaIntro
	if note != "" {
		text = note + "\n\n" + text
	}
	kb := personaSelectKeyboard(b.personas.All())
	replaceID := 0
	if ev.query != nil && ev.query.Message != nil {
		replaceID = ev.query.Message.MessageID
	}
	b.sendScreen(s, ev.chatID, replaceID, "personality.png", text, &kb)
}

func (b *Bot) personaSelected(ctx context.Context, ev event, s *Session) {
	key := strings.TrimPrefix(ev.data, "personality_")
	entry, ok := b.personas.Get(key)
	if !ok {
		b.log.Warn("persona_unknown_key", "key", key)
		b.renderPersonaSelection(ev, s, "❌ Личность не найдена, выберите из списка.")
		return
	}

	s.SetSelection(key)
	s.SetState(StateExchanging)

	kb := personaChatKeyboard()
	text := fmt.Sprintf("🎭 Выбрана личность: %s <b>%s</b>\n\nТеперь напишите любое сообщение, и я отвечу от лица этой личности!", entry.Emoji, entry.Name)
	b.editOrSend(ev.chatID, ev.query.Message.MessageID, text, &kb, s)
}

func (b *Bot) handlePersonaMessage(ctx context.Context, ev event, s *Session) {
	entry, ok := b.personas.Get(s.Selection())
	if !ok {
		// Corrupted session: the exchange state requires a selection.
		b.log.Warn("persona_missing_selection", "chat_id", ev.chatID)
		s.ClearSelection()
		s.SetState(StateSelecting)
		b.renderPersonaSelection(ev, s, "⚠️ Личность не выбрана.")
		return
	}

	b.sendTyping(ev.chatID)
	placeholderID := b.sendText(ev.chatID, processingText)

	// Persona replies are single-turn and kept short on purpose.
	res, err := b.llm.Chat(ctx, llm.Request{
		Model: b.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: entry.Prompt},
			{Role: llm.RoleUser, Content: ev.data},
		},
		MaxTokens:   80,
		Temperature: 0.8,
	})

	kb := personaChatKeyboard()
	if err != nil {
		b.log.Error("persona_llm_error", "error", err.Error(), "persona", entry.Key)
		b.editOrSend(ev.chatID, placeholderID, gatewayErrorText, &kb, s)
		return
	}
	text := fmt.Sprintf("%s <b>%s отвечает:</b>\n\n%s", entry.Emoji, entry.Name, res.Text)
	b.editOrSend(ev.chatID, placeholderID, text, &kb, s)
}

func (b *Bot) changePersona(ctx context.Context, ev event, s *Session) {
	s.ClearSelection()
	s.SetState(StateSelecting)
	b.renderPersonaSelection(ev, s, "")
}

// continuePersonaChat is a deliberate no-op: the button stays for layout
// parity, pressing it just leaves the dialog where it is.
func (b *Bot) continuePersonaChat(ctx context.Context, ev event, s *Session) {
	b.log.Debug("persona_continue_noop", "chat_id", ev.chatID)
}
