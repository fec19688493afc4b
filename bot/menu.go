package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🎲 Рандомный факт", "random_fact")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🤖 ChatGPT", "gpt_interface")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("👥 Диалог с личностью", "talk_interface")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🧠 Поиграем в Квиз?", "quiz_interface")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🥸 Переводчик на разные языки", "translate_interface")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🚀 Запустить голосовой чат", "start_voice_dialog")),
	)
}

// handleStart is /start: drop whatever mode was active and show the menu.
func (b *Bot) handleStart(ctx context.Context, ev event, s *Session) {
	s.Reset()
	b.showMainMenu(ev, s)
}

// finishToMenu is the universal fallback: every mode's "return to menu"
// button and the global main_menu payload land here. Acting twice is a
// harmless duplicate render.
func (b *Bot) finishToMenu(ctx context.Context, ev event, s *Session) {
	s.Reset()
	b.showMainMenu(ev, s)
}

func (b *Bot) showMainMenu(ev event, s *Session) {
	// The pressed menu message is stale once we render a fresh menu.
	if ev.query != nil && ev.query.Message != nil {
		b.deleteMessage(ev.chatID, ev.query.Message.MessageID)
	}
	kb := mainMenuKeyboard()
	id := b.sendTextWithKeyboard(ev.chatID, welcomeText, kb)
	s.SetMenuMessageID(id)
}

// sendMainMenuTo renders the menu without an originating event; used by the
// deferred transition after the quiz summary.
func (b *Bot) sendMainMenuTo(chatID int64) {
	kb := mainMenuKeyboard()
	b.sendTextWithKeyboard(chatID, welcomeText, kb)
}
