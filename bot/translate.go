package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MomoTMR/MomoTMR-bot/llm"
	"github.com/MomoTMR/MomoTMR-bot/registry"
)

func languageSelectKeyboard(entries []registry.Entry) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries)+1)
	for _, e := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(e.Emoji+" "+e.Name, "languages_"+e.Key),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Вернуться в меню", "finish_translate"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func translateChatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Сменить язык", "change_language")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Вернуться в меню", "finish_translate")),
	)
}

// startTranslate is /translate. Structurally the persona machine with the
// language registry behind it.
func (b *Bot) startTranslate(ctx context.Context, ev event, s *Session) {
	s.Enter(ModeTranslate, StateSelecting)
	b.renderLanguageSelection(ev, s, "")
}

func (b *Bot) renderLanguageSelection(ev event, s *Session, note string) {
	text := translateIntro
	if note != "" {
		text = note + "\n\n" + text
	}
	kb := languageSelectKeyboard(b.languages.All())
	replaceID := 0
	if ev.query != nil && ev.query.Message != nil {
		replaceID = ev.query.Message.MessageID
	}
	b.sendScreen(s, ev.chatID, replaceID, "translate.png", text, &kb)
}

func (b *Bot) languageSelected(ctx context.Context, ev event, s *Session) {
	key := strings.TrimPrefix(ev.data, "languages_")
	entry, ok := b.languages.Get(key)
	if !ok {
		b.log.Warn("translate_unknown_key", "key", key)
		b.renderLanguageSelection(ev, s, "❌ Язык не найден, выберите из списка.")
		return
	}

	s.SetSelection(key)
	s.SetState(StateExchanging)

	kb := translateChatKeyboard()
	text := fmt.Sprintf("%s <b>%s</b>\n\nОтправьте текст, и я переведу его!", entry.Emoji, entry.Name)
	b.editOrSend(ev.chatID, ev.query.Message.MessageID, text, &kb, s)
}

func (b *Bot) handleTranslateMessage(ctx context.Context, ev event, s *Session) {
	entry, ok := b.languages.Get(s.Selection())
	if !ok {
		b.log.Warn("translate_missing_selection", "chat_id", ev.chatID)
		s.ClearSelection()
		s.SetState(StateSelecting)
		b.renderLanguageSelection(ev, s, "⚠️ Язык не выбран.")
		return
	}

	b.sendTyping(ev.chatID)
	placeholderID := b.sendText(ev.chatID, processingText)

	res, err := b.llm.Chat(ctx, llm.Request{
		Model: b.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: entry.Prompt},
			{Role: llm.RoleUser, Content: ev.data},
		},
		MaxTokens:   300,
		Temperature: 0.3,
	})

	kb := translateChatKeyboard()
	if err != nil {
		b.log.Error("translate_llm_error", "error", err.Error(), "language", entry.Key)
		b.editOrSend(ev.chatID, placeholderID, gatewayErrorText, &kb, s)
		return
	}
	text := fmt.Sprintf("%s <b>Перевод:</b>\n\n%s", entry.Emoji, res.Text)
	b.editOrSend(ev.chatID, placeholderID, text, &kb, s)
}

func (b *Bot) changeLanguage(ctx context.Context, ev event, s *Session) {
	s.ClearSelection()
	s.SetState(StateSelecting)
	b.renderLanguageSelection(ev, s, "")
}
