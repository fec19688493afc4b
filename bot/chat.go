package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MomoTMR/MomoTMR-bot/llm"
)

func chatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💬 Новый диалог", "gpt_continue")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Вернуться в меню", "gpt_finish")),
	)
}

// startChat is /gpt: a multi-turn dialog with the assistant persona. Entry
// always begins with an empty history.
func (b *Bot) startChat(ctx context.Context, ev event, s *Session) {
	s.Enter(ModeChat, StateExchanging)
	kb := chatKeyboard()
	replaceID := 0
	if ev.query != nil && ev.query.Message != nil {
		replaceID = ev.query.Message.MessageID
	}
	b.sendScreen(s, ev.chatID, replaceID, "chatgpt.png", chatCaption, &kb)
}

// newChatDialog clears the history and re-renders the entry screen without
// leaving the mode.
func (b *Bot) newChatDialog(ctx context.Context, ev event, s *Session) {
	s.ClearHistory()
	kb := chatKeyboard()
	b.sendScreen(s, ev.chatID, ev.query.Message.MessageID, "chatgpt.png", chatCaption, &kb)
}

// handleChatMessage forwards one user turn, with the whole accumulated
// history, to the gateway.
func (b *Bot) handleChatMessage(ctx context.Context, ev event, s *Session) {
	b.deleteMessage(ev.chatID, s.MenuMessageID())
	b.sendTyping(ev.chatID)

	s.AppendTurn(llm.RoleUser, ev.data)
	placeholderID := b.sendText(ev.chatID, processingText)

	res, err := b.llm.Chat(ctx, llm.Request{
		Model:       b.cfg.Model,
		Messages:    chatMessages(s.History()),
		MaxTokens:   1000,
		Temperature: 0.7,
	})

	kb := chatKeyboard()
	if err != nil {
		b.log.Error("chat_llm_error", "error", err.Error())
		b.editOrSend(ev.chatID, placeholderID, gatewayErrorText, &kb, s)
		return
	}

	s.AppendTurn(llm.RoleAssistant, res.Text)
	b.editOrSend(ev.chatID, placeholderID, "🤖 <b>ChatGPT отвечает:</b>\n\n"+res.Text, &kb, s)
}

// chatMessages builds the gateway request: the fixed system prompt followed
// by every accumulated turn in original order.
func chatMessages(history []llm.Message) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: chatSystemPrompt})
	msgs = append(msgs, history...)
	return msgs
}
