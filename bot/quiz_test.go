package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/MomoTMR/MomoTMR-bot/llm"
)

const wellFormedQuestion = `Вопрос: В каком году человек впервые высадился на Луну?
A) 1965
B) 1969
C) 1972
D) 1958
Правильный ответ: B`

func TestParseQuestionWellFormed(t *testing.T) {
	q, ok := parseQuestion(wellFormedQuestion)
	if !ok {
		t.Fatalf("well-formed response must parse")
	}
	if q.Text != "В каком году человек впервые высадился на Луну?" {
		t.Errorf("question text mismatch: %q", q.Text)
	}
	want := [4]string{"1965", "1969", "1972", "1958"}
	if q.Options != want {
		t.Errorf("options mismatch: %v", q.Options)
	}
	if q.Correct != "B" {
		t.Errorf("correct letter mismatch: %q", q.Correct)
	}
}

func TestParseQuestionToleratesNoiseAndCase(t *testing.T) {
	raw := "Конечно! Вот вопрос:\n\n  Вопрос: Столица Франции?  \nA) Париж\n B) Лион\nC) Марсель\nD) Ницца\nПравильный ответ: a\n"
	q, ok := parseQuestion(raw)
	if !ok {
		t.Fatalf("response with surrounding noise must still parse")
	}
	if q.Correct != "A" {
		t.Errorf("correct letter should be upper-cased, got %q", q.Correct)
	}
	if q.Options[1] != "Лион" {
		t.Errorf("indented option line should parse, got %q", q.Options[1])
	}
}

func TestParseQuestionRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"no question":    "A) один\nB) два\nC) три\nПравильный ответ: A",
		"two options":    "Вопрос: сколько?\nA) один\nB) два\nПравильный ответ: A",
		"free-form text": "Вот интересный вопрос про историю, выбирайте сами.",
	}
	for name, raw := range cases {
		if _, ok := parseQuestion(raw); ok {
			t.Errorf("%s: malformed response must not parse", name)
		}
	}
}

func TestParseQuestionAcceptsThreeOptions(t *testing.T) {
	raw := "Вопрос: сколько?\nA) один\nB) два\nC) три\nПравильный ответ: C"
	q, ok := parseQuestion(raw)
	if !ok {
		t.Fatalf("three options are enough to parse")
	}
	if q.optionCount() != 3 {
		t.Errorf("expected 3 options, got %d", q.optionCount())
	}
}

func TestQuizTopicSelectionGeneratesQuestion(t *testing.T) {
	tg := &fakeAPI{}
	client := &fakeLLM{results: []llm.Result{{Text: wellFormedQuestion}}}
	b := newTestBot(t, tg, client)

	b.handleUpdate(context.Background(), commandUpdate(7, "quiz"))
	b.handleUpdate(context.Background(), callbackUpdate(7, "quiz_topic_history"))

	s := b.sessions.Get(7)
	mode, state := s.Snapshot()
	if mode != ModeQuiz || state != StateAnswering {
		t.Fatalf("expected quiz/answering, got %s/%s", mode, state)
	}
	if s.Selection() != "history" {
		t.Errorf("topic selection not stored: %q", s.Selection())
	}
	if s.CurrentAnswer() != "B" {
		t.Errorf("current answer not stored: %q", s.CurrentAnswer())
	}
	if _, n := s.Score(); n != 1 {
		t.Errorf("total should be 1 after first question, got %d", n)
	}

	rendered := tg.lastText(t)
	if !strings.Contains(rendered, "Вопрос #1") || !strings.Contains(rendered, "A) 1965") {
		t.Errorf("rendered question mismatch: %q", rendered)
	}
	req := client.lastRequest(t)
	if req.MaxTokens != 300 {
		t.Errorf("question generation should request 300 tokens, got %d", req.MaxTokens)
	}
}

func TestQuizAnswerScoring(t *testing.T) {
	tg := &fakeAPI{}
	client := &fakeLLM{results: []llm.Result{{Text: wellFormedQuestion}}}
	b := newTestBot(t, tg, client)

	b.handleUpdate(context.Background(), commandUpdate(7, "quiz"))
	b.handleUpdate(context.Background(), callbackUpdate(7, "quiz_topic_history"))
	s := b.sessions.Get(7)

	b.handleUpdate(context.Background(), textUpdate(7, " b "))
	if k, n := s.Score(); k != 1 || n != 1 {
		t.Fatalf("expected 1/1 after correct answer, got %d/%d", k, n)
	}
	if got := tg.lastText(t); !strings.Contains(got, "Правильно!") || !strings.Contains(got, "1/1") {
		t.Errorf("correct-answer feedback mismatch: %q", got)
	}
}

func TestQuizWrongAnswerShowsCorrectLetter(t *testing.T) {
	tg := &fakeAPI{}
	client := &fakeLLM{results: []llm.Result{{Text: wellFormedQuestion}}}
	b := newTestBot(t, tg, client)

	b.handleUpdate(context.Background(), commandUpdate(7, "quiz"))
	b.handleUpdate(context.Background(), callbackUpdate(7, "quiz_topic_history"))
	s := b.sessions.Get(7)

	b.handleUpdate(context.Background(), textUpdate(7, "D"))
	if k, n := s.Score(); k != 0 || n != 1 {
		t.Fatalf("expected 0/1 after wrong answer, got %d/%d", k, n)
	}
	got := tg.lastText(t)
	if !strings.Contains(got, "Неправильно!") || !strings.Contains(got, "Правильный ответ: B") {
		t.Errorf("wrong-answer feedback mismatch: %q", got)
	}
}

func TestQuizInvalidAnswerRepromptsWithoutScoring(t *testing.T) {
	tg := &fakeAPI{}
	client := &fakeLLM{results: []llm.Result{{Text: wellFormedQuestion}}}
	b := newTestBot(t, tg, client)

	b.handleUpdate(context.Background(), commandUpdate(7, "quiz"))
	b.handleUpdate(context.Background(), callbackUpdate(7, "quiz_topic_history"))
	s := b.sessions.Get(7)

	b.handleUpdate(context.Background(), textUpdate(7, "сорок два"))
	if k, n := s.Score(); k != 0 || n != 1 {
		t.Fatalf("invalid answer must not change the score, got %d/%d", k, n)
	}
	if got := tg.lastText(t); got != quizAnswerPromptText {
		t.Errorf("expected answer reprompt, got %q", got)
	}
	if s.CurrentAnswer() != "B" {
		t.Errorf("pending question must survive an invalid answer")
	}
}

func TestQuizParseFailureKeepsStateAndOffersRetry(t *testing.T) {
	tg := &fakeAPI{}
	client := &fakeLLM{results: []llm.Result{{Text: "не могу придумать вопрос"}}}
	b := newTestBot(t, tg, client)

	b.handleUpdate(context.Background(), commandUpdate(7, "quiz"))
	b.handleUpdate(context.Background(), callbackUpdate(7, "quiz_topic_history"))
	s := b.sessions.Get(7)

	if _, n := s.Score(); n != 0 {
		t.Errorf("failed generation must not count a question, got total %d", n)
	}
	if mode, state := s.Snapshot(); mode != ModeQuiz || state != StateAnswering {
		t.Errorf("parse failure must keep quiz/answering, got %s/%s", mode, state)
	}
	if got := tg.lastText(t); got != quizParseErrorText {
		t.Errorf("expected parse error text, got %q", got)
	}
}

func TestQuizFinishSummaryTiers(t *testing.T) {
	cases := []struct {
		correct int
		total   int
		want    string
	}{
		{4, 5, "80.0%"},
		{4, 5, "Отличный результат"},
		{3, 5, "Хороший результат"},
		{2, 5, "Неплохо, но можно лучше"},
		{1, 5, "Стоит подучиться"},
	}
	for _, tc := range cases {
		tg := &fakeAPI{}
		b := newTestBot(t, tg, &fakeLLM{})
		s := b.sessions.Get(7)
		s.Enter(ModeQuiz, StateAnswering)
		for i := 0; i < tc.total; i++ {
			s.IncTotal()
		}
		for i := 0; i < tc.correct; i++ {
			s.AddCorrect()
		}

		ev := event{kind: eventCallback, data: "quiz_finish", chatID: 7,
			query: callbackUpdate(7, "quiz_finish").CallbackQuery}
		b.finishQuiz(context.Background(), ev, s)

		if got := tg.lastText(t); !strings.Contains(got, tc.want) {
			t.Errorf("%d/%d: summary should contain %q, got %q", tc.correct, tc.total, tc.want, got)
		}
		s.CancelReturn()
	}
}

func TestQuizFinishWithNoQuestionsOmitsPercentage(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})
	s := b.sessions.Get(7)
	s.Enter(ModeQuiz, StateSelecting)

	ev := event{kind: eventCallback, data: "quiz_finish", chatID: 7,
		query: callbackUpdate(7, "quiz_finish").CallbackQuery}
	b.finishQuiz(context.Background(), ev, s)

	got := tg.lastText(t)
	if strings.Contains(got, "%") {
		t.Errorf("summary without questions must not show a percentage: %q", got)
	}
	if !strings.Contains(got, "0/0") {
		t.Errorf("summary should still show the 0/0 counter: %q", got)
	}
	s.CancelReturn()
}

func TestQuizFinishResetsAndSchedulesMenu(t *testing.T) {
	tg := &fakeAPI{}
	b := newTestBot(t, tg, &fakeLLM{})
	b.cfg.MenuReturnDelay = 1 // immediate for the test

	s := b.sessions.Get(7)
	s.Enter(ModeQuiz, StateAnswering)

	ev := event{kind: eventCallback, data: "quiz_finish", chatID: 7,
		query: callbackUpdate(7, "quiz_finish").CallbackQuery}
	b.finishQuiz(context.Background(), ev, s)

	if mode, state := s.Snapshot(); mode != ModeNone || state != StateNone {
		t.Errorf("finish must reset the session, got %s/%s", mode, state)
	}
	s.CancelReturn()
}
