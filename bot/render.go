package bot

import (
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// assetPath resolves an optional menu image. Missing assets are fine — every
// screen falls back to plain text.
func (b *Bot) assetPath(name string) string {
	if b.cfg.AssetsDir == "" || name == "" {
		return ""
	}
	p := filepath.Join(b.cfg.AssetsDir, name)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// sendScreen renders a mode screen: photo-with-caption when the asset
// exists, otherwise edit-in-place of replaceID, otherwise a fresh message.
// The rendered message id is remembered in the session for later edits.
func (b *Bot) sendScreen(s *Session, chatID int64, replaceID int, image, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if img := b.assetPath(image); img != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(img))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		if kb != nil {
			photo.ReplyMarkup = *kb
		}
		sent, err := b.api.Send(photo)
		if err == nil {
			if replaceID != 0 {
				b.deleteMessage(chatID, replaceID)
			}
			s.SetMenuMessageID(sent.MessageID)
			return
		}
		b.log.Warn("screen_photo_error", "error", err.Error())
	}

	if replaceID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, replaceID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		edit.ReplyMarkup = kb
		if _, err := b.api.Send(edit); err == nil {
			s.SetMenuMessageID(replaceID)
			return
		}
		// Editing fails when the previous screen was a photo; send anew.
		b.deleteMessage(chatID, replaceID)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Warn("screen_send_error", "error", err.Error())
		return
	}
	s.SetMenuMessageID(sent.MessageID)
}

func (b *Bot) sendText(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Warn("send_error", "error", err.Error())
		return 0
	}
	return sent.MessageID
}

func (b *Bot) sendTextWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = kb
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Warn("send_error", "error", err.Error())
		return 0
	}
	return sent.MessageID
}

func (b *Bot) editText(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) bool {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		b.log.Warn("edit_error", "error", err.Error())
		return false
	}
	return true
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Debug("delete_error", "error", err.Error())
	}
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.Debug("typing_error", "error", err.Error())
	}
}
