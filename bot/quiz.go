package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MomoTMR/MomoTMR-bot/llm"
	"github.com/MomoTMR/MomoTMR-bot/registry"
)

var quizLetters = [4]string{"A", "B", "C", "D"}

// quizQuestion is the structured form of one generated question. Options is
// indexed by letter (0=A..3=D); absent options are empty strings.
type quizQuestion struct {
	Text    string
	Options [4]string
	Correct string
}

func (q quizQuestion) optionCount() int {
	n := 0
	for _, o := range q.Options {
		if o != "" {
			n++
		}
	}
	return n
}

// parseQuestion extracts a question from the gateway's free-text reply in
// the fixed layout the topic prompts request. It tolerates stray whitespace
// and considers the parse successful when the question line and more than
// two option lines are present.
func parseQuestion(raw string) (quizQuestion, bool) {
	var q quizQuestion
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Вопрос:"):
			q.Text = strings.TrimSpace(strings.TrimPrefix(line, "Вопрос:"))
		case strings.Contains(line, "Правильный ответ:"):
			parts := strings.Split(line, ":")
			q.Correct = strings.ToUpper(strings.TrimSpace(parts[len(parts)-1]))
		default:
			for i, letter := range quizLetters {
				if strings.HasPrefix(line, letter+")") {
					q.Options[i] = strings.TrimSpace(strings.TrimPrefix(line, letter+")"))
					break
				}
			}
		}
	}
	if q.Text == "" || q.optionCount() <= 2 {
		return quizQuestion{}, false
	}
	return q, true
}

func quizTopicKeyboard(entries []registry.Entry) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries)+1)
	for _, e := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(e.Emoji+" "+e.Name, "quiz_topic_"+e.Key),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Вернуться в меню", "main_menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func quizContinueKeyboard(topicKey string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➡️ Ещё вопрос", "quiz_continue_"+topicKey)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Сменить тему", "quiz_change_topic")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏁 Закончить квиз", "quiz_finish")),
	)
}

// startQuiz is /quiz: pick a topic, then answer generated questions.
func (b *Bot) startQuiz(ctx context.Context, ev event, s *Session) {
	s.Enter(ModeQuiz, StateSelecting)
	b.renderQuizTopics(ev, s, "")
}

func (b *Bot) renderQuizTopics(ev event, s *Session, note string) {
	var sb strings.Builder
	if note != "" {
		sb.WriteString(note)
		sb.WriteString("\n\n")
	}
	sb.WriteString(quizIntro)
	kb := quizTopicKeyboard(b.topics.All())
	replaceID := 0
	if ev.query != nil && ev.query.Message != nil {
		replaceID = ev.query.Message.MessageID
	}
	b.sendScreen(s, ev.chatID, replaceID, "quiz.png", sb.String(), &kb)
}

// quizTopicSelected stores the topic, zeroes the counters and generates the
// first question.
func (b *Bot) quizTopicSelected(ctx context.Context, ev event, s *Session) {
	key := strings.TrimPrefix(ev.data, "quiz_topic_")
	if _, ok := b.topics.Get(key); !ok {
		b.log.Warn("quiz_unknown_topic", "key", key)
		b.renderQuizTopics(ev, s, "❌ Тема не найдена, выберите из списка.")
		return
	}

	// Re-enter to drop any counters left by a previous topic, then select.
	s.Enter(ModeQuiz, StateAnswering)
	s.SetSelection(key)
	b.generateQuizQuestion(ctx, ev.chatID, ev.query.Message.MessageID, s)
}

func (b *Bot) nextQuizQuestion(ctx context.Context, ev event, s *Session) {
	b.generateQuizQuestion(ctx, ev.chatID, ev.query.Message.MessageID, s)
}

func (b *Bot) generateQuizQuestion(ctx context.Context, chatID int64, messageID int, s *Session) {
	topic, ok := b.topics.Get(s.Selection())
	if !ok {
		// The answering state requires a topic; recover via selection.
		b.log.Warn("quiz_missing_topic", "chat_id", chatID)
		s.SetState(StateSelecting)
		ev := event{chatID: chatID}
		b.renderQuizTopics(ev, s, "⚠️ Тема не выбрана.")
		return
	}

	b.editText(chatID, messageID, quizGeneratingText, nil)

	res, err := b.llm.Chat(ctx, llm.Request{
		Model: b.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: topic.Prompt},
			{Role: llm.RoleUser, Content: quizUserPrompt},
		},
		MaxTokens:   300,
		Temperature: 0.8,
	})
	if err != nil {
		b.log.Error("quiz_llm_error", "error", err.Error(), "topic", topic.Key)
		kb := quizContinueKeyboard(topic.Key)
		b.editOrSend(chatID, messageID, quizParseErrorText, &kb, s)
		return
	}

	q, ok := parseQuestion(res.Text)
	if !ok {
		b.log.Warn("quiz_parse_error", "topic", topic.Key, "raw_len", len(res.Text))
		kb := quizContinueKeyboard(topic.Key)
		b.editOrSend(chatID, messageID, quizParseErrorText, &kb, s)
		return
	}

	s.SetCurrentAnswer(q.Correct)
	n := s.IncTotal()

	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 <b>Вопрос #%d</b>\n\n%s\n\n", n, q.Text)
	for i, opt := range q.Options {
		if opt == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s) %s\n", quizLetters[i], opt)
	}
	sb.WriteString("\n<i>Напишите букву правильного ответа (A, B, C или D)</i>")

	b.editOrSend(chatID, messageID, sb.String(), nil, s)
}

// handleQuizAnswer scores one typed answer. Anything but a single letter
// A-D reprompts without touching the counters.
func (b *Bot) handleQuizAnswer(ctx context.Context, ev event, s *Session) {
	answer := strings.ToUpper(strings.TrimSpace(ev.data))
	valid := false
	for _, l := range quizLetters {
		if answer == l {
			valid = true
			break
		}
	}
	if !valid {
		b.sendText(ev.chatID, quizAnswerPromptText)
		return
	}

	correct := answer == s.CurrentAnswer()
	if correct {
		s.AddCorrect()
	}
	k, n := s.Score()

	var result string
	if correct {
		result = "✅ <b>Правильно!</b>"
	} else {
		result = fmt.Sprintf("❌ <b>Неправильно!</b> Правильный ответ: %s", s.CurrentAnswer())
	}
	text := fmt.Sprintf("%s\n\n📊 <b>Статистика:</b> %d/%d правильных ответов", result, k, n)

	b.deleteMessage(ev.chatID, ev.message.MessageID)
	kb := quizContinueKeyboard(s.Selection())
	id := b.sendTextWithKeyboard(ev.chatID, text, kb)
	s.SetMenuMessageID(id)
}

func (b *Bot) changeQuizTopic(ctx context.Context, ev event, s *Session) {
	s.ClearSelection()
	s.SetState(StateSelecting)
	b.renderQuizTopics(ev, s, "")
}

// finishQuiz reports the final score, clears the session, and schedules the
// menu render a few seconds later. Any fresh event cancels the schedule.
func (b *Bot) finishQuiz(ctx context.Context, ev event, s *Session) {
	k, n := s.Score()

	var sb strings.Builder
	sb.WriteString("🏁 <b>Квиз завершён!</b>\n\n")
	fmt.Fprintf(&sb, "📊 <b>Итоговая статистика:</b>\nПравильных ответов: %d/%d\n", k, n)
	if n > 0 {
		pct := float64(k) / float64(n) * 100
		fmt.Fprintf(&sb, "Процент правильных ответов: %.1f%%\n\n", pct)
		sb.WriteString(quizTier(pct))
	}

	b.editOrSend(ev.chatID, ev.query.Message.MessageID, sb.String(), nil, s)

	chatID := ev.chatID
	s.Reset()
	s.ScheduleReturn(b.cfg.MenuReturnDelay, func() {
		b.sendMainMenuTo(chatID)
	})
}

func quizTier(pct float64) string {
	switch {
	case pct >= 80:
		return "🎉 Отличный результат!"
	case pct >= 60:
		return "👍 Хороший результат!"
	case pct >= 40:
		return "👌 Неплохо, но можно лучше!"
	default:
		return "📚 Стоит подучиться!"
	}
}
