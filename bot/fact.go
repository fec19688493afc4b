package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MomoTMR/MomoTMR-bot/llm"
)

func factKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🎲 Хочу ещё факт", "random_more")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Закончить", "random_finish")),
	)
}

// startFact is /random or the menu button. The mode is stateless: every
// press is one fresh gateway call.
func (b *Bot) startFact(ctx context.Context, ev event, s *Session) {
	s.Enter(ModeFact, StateNone)

	placeholderID := 0
	if ev.query != nil && ev.query.Message != nil {
		placeholderID = ev.query.Message.MessageID
		b.editText(ev.chatID, placeholderID, factGeneratingText, nil)
	} else {
		placeholderID = b.sendText(ev.chatID, factGeneratingText)
	}
	b.renderFact(ctx, ev.chatID, placeholderID, s)
}

func (b *Bot) moreFact(ctx context.Context, ev event, s *Session) {
	placeholderID := ev.query.Message.MessageID
	b.editText(ev.chatID, placeholderID, factGeneratingText, nil)
	b.renderFact(ctx, ev.chatID, placeholderID, s)
}

func (b *Bot) renderFact(ctx context.Context, chatID int64, messageID int, s *Session) {
	res, err := b.llm.Chat(ctx, llm.Request{
		Model: b.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: factSystemPrompt},
			{Role: llm.RoleUser, Content: factUserPrompt},
		},
		MaxTokens:   200,
		Temperature: 0.8,
	})

	kb := factKeyboard()
	if err != nil {
		b.log.Error("fact_llm_error", "error", err.Error())
		b.editOrSend(chatID, messageID, factErrorText, &kb, s)
		return
	}
	b.editOrSend(chatID, messageID, "🧠 <b>Интересный факт:</b>\n\n"+res.Text, &kb, s)
}

func (b *Bot) editOrSend(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup, s *Session) {
	if messageID != 0 && b.editText(chatID, messageID, text, kb) {
		s.SetMenuMessageID(messageID)
		return
	}
	var id int
	if kb != nil {
		id = b.sendTextWithKeyboard(chatID, text, *kb)
	} else {
		id = b.sendText(chatID, text)
	}
	s.SetMenuMessageID(id)
}
