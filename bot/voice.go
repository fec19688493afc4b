package bot

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/MomoTMR/MomoTMR-bot/llm"
	"github.com/MomoTMR/MomoTMR-bot/speech"
)

func voiceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🛑 Остановить диалог", "voice_stop")),
	)
}

// startVoice is /voice: voice clips in, voice plus text out.
func (b *Bot) startVoice(ctx context.Context, ev event, s *Session) {
	s.Enter(ModeVoice, StateExchanging)
	replaceID := 0
	if ev.query != nil && ev.query.Message != nil {
		replaceID = ev.query.Message.MessageID
	}
	kb := voiceKeyboard()
	b.sendScreen(s, ev.chatID, replaceID, "voice_chat.png", voiceCaption, &kb)
}

// handleVoiceClip runs the full pipeline for one incoming clip: download,
// transcribe, chat, synthesize. Every branch ends in the spoken reply:
// recognition and transport failures skip the gateway and speak the fixed
// fallback phrase instead, like the text reply they accompany.
func (b *Bot) handleVoiceClip(ctx context.Context, ev event, s *Session) {
	var tempFiles []string
	defer func() {
		for _, f := range tempFiles {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				b.log.Warn("voice_temp_cleanup_error", "path", f, "error", err.Error())
			}
		}
	}()

	b.sendTyping(ev.chatID)

	clipPath := filepath.Join(b.cfg.TempDir, "voice-"+uuid.NewString()+".oga")
	tempFiles = append(tempFiles, clipPath)

	var transcript, replyText string
	if err := b.download(ctx, ev.message.Voice.FileID, clipPath); err != nil {
		b.log.Error("voice_download_error", "chat_id", ev.chatID, "error", err.Error())
		replyText = speechServiceErrText
	} else {
		var err error
		transcript, err = b.speech.Transcribe(ctx, clipPath, b.cfg.SpeechLanguage)
		switch {
		case errors.Is(err, speech.ErrNotUnderstood):
			replyText = notRecognizedText
		case err != nil:
			b.log.Error("voice_stt_error", "chat_id", ev.chatID, "error", err.Error())
			replyText = speechServiceErrText
		}
	}

	textReply := replyText
	if replyText == "" {
		s.AppendTurn(llm.RoleUser, transcript)
		res, err := b.llm.Chat(ctx, llm.Request{
			Model:       b.cfg.Model,
			Messages:    chatMessages(s.History()),
			MaxTokens:   1000,
			Temperature: 0.7,
		})
		if err != nil {
			b.log.Error("voice_llm_error", "chat_id", ev.chatID, "error", err.Error())
			replyText = gatewayErrorText
			textReply = gatewayErrorText
		} else {
			s.AppendTurn(llm.RoleAssistant, res.Text)
			replyText = res.Text
			textReply = "🗣 " + transcript + "\n\n🤖 " + res.Text
		}
	}

	b.speakReply(ctx, ev.chatID, replyText, &tempFiles)
	b.replyWithVoiceKeyboard(ev.chatID, textReply, s)
}

// speakReply synthesizes text and sends it as a voice note. Synthesis
// failures are logged and swallowed; the caller still sends the text form.
func (b *Bot) speakReply(ctx context.Context, chatID int64, text string, tempFiles *[]string) {
	audio, err := b.speech.Synthesize(ctx, text, b.cfg.TTSVoice)
	if err != nil {
		b.log.Error("voice_tts_error", "chat_id", chatID, "error", err.Error())
		return
	}

	replyPath := filepath.Join(b.cfg.TempDir, "voice-"+uuid.NewString()+".ogg")
	*tempFiles = append(*tempFiles, replyPath)
	if err := os.WriteFile(replyPath, audio, 0o600); err != nil {
		b.log.Error("voice_temp_write_error", "error", err.Error())
		return
	}

	voice := tgbotapi.NewVoice(chatID, tgbotapi.FilePath(replyPath))
	if _, err := b.api.Send(voice); err != nil {
		b.log.Error("voice_send_error", "chat_id", chatID, "error", err.Error())
	}
}

func (b *Bot) replyWithVoiceKeyboard(chatID int64, text string, s *Session) {
	id := b.sendTextWithKeyboard(chatID, text, voiceKeyboard())
	s.SetMenuMessageID(id)
}
