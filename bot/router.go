package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type eventKind int

const (
	eventCommand eventKind = iota
	eventCallback
	eventText
	eventVoice
)

func (k eventKind) String() string {
	switch k {
	case eventCommand:
		return "command"
	case eventCallback:
		return "callback"
	case eventText:
		return "text"
	case eventVoice:
		return "voice"
	default:
		return "unknown"
	}
}

// event is one inbound interaction, normalized from a Telegram update.
// data holds the command name, callback payload, or message text.
type event struct {
	kind    eventKind
	data    string
	chatID  int64
	message *tgbotapi.Message
	query   *tgbotapi.CallbackQuery
}

type handlerFunc func(ctx context.Context, ev event, s *Session)

const (
	modeAny  Mode  = -1
	stateAny State = -1
)

// route binds an explicit matcher (exact command/payload or payload prefix)
// scoped to a mode and state. Matchers stay predicates here; handlers only
// ever see events that already matched.
type route struct {
	name   string
	kind   eventKind
	exact  string
	prefix string
	mode   Mode
	state  State
	fn     handlerFunc
}

func (r *route) matches(ev event, mode Mode, state State) bool {
	if r.kind != ev.kind {
		return false
	}
	if r.mode != modeAny && r.mode != mode {
		return false
	}
	if r.state != stateAny && r.state != state {
		return false
	}
	switch {
	case r.prefix != "":
		return strings.HasPrefix(ev.data, r.prefix)
	case r.exact != "":
		return ev.data == r.exact
	default:
		// Text and voice routes match on kind+mode+state alone.
		return true
	}
}

// resolve walks the route table in order and returns the first match.
// Commands sit first, so they always win entry into their mode; mode-scoped
// callbacks come before the global fallbacks.
func (b *Bot) resolve(ev event, mode Mode, state State) *route {
	for i := range b.routes {
		if b.routes[i].matches(ev, mode, state) {
			return &b.routes[i]
		}
	}
	return nil
}

func (b *Bot) buildRoutes() []route {
	return []route{
		// Commands always enter their own mode, whatever was active.
		{name: "cmd.start", kind: eventCommand, exact: "start", mode: modeAny, state: stateAny, fn: b.handleStart},
		{name: "cmd.random", kind: eventCommand, exact: "random", mode: modeAny, state: stateAny, fn: b.startFact},
		{name: "cmd.gpt", kind: eventCommand, exact: "gpt", mode: modeAny, state: stateAny, fn: b.startChat},
		{name: "cmd.personality", kind: eventCommand, exact: "personality", mode: modeAny, state: stateAny, fn: b.startPersona},
		{name: "cmd.quiz", kind: eventCommand, exact: "quiz", mode: modeAny, state: stateAny, fn: b.startQuiz},
		{name: "cmd.translate", kind: eventCommand, exact: "translate", mode: modeAny, state: stateAny, fn: b.startTranslate},
		{name: "cmd.voice", kind: eventCommand, exact: "voice", mode: modeAny, state: stateAny, fn: b.startVoice},

		// Fact mode.
		{name: "fact.more", kind: eventCallback, exact: "random_more", mode: ModeFact, state: stateAny, fn: b.moreFact},
		{name: "fact.finish", kind: eventCallback, exact: "random_finish", mode: ModeFact, state: stateAny, fn: b.finishToMenu},

		// Open chat.
		{name: "chat.new_dialog", kind: eventCallback, exact: "gpt_continue", mode: ModeChat, state: StateExchanging, fn: b.newChatDialog},
		{name: "chat.finish", kind: eventCallback, exact: "gpt_finish", mode: ModeChat, state: stateAny, fn: b.finishToMenu},
		{name: "chat.message", kind: eventText, mode: ModeChat, state: StateExchanging, fn: b.handleChatMessage},

		// Persona dialog.
		{name: "persona.selected", kind: eventCallback, prefix: "personality_", mode: ModePersona, state: StateSelecting, fn: b.personaSelected},
		{name: "persona.change", kind: eventCallback, exact: "change_personality", mode: ModePersona, state: stateAny, fn: b.changePersona},
		{name: "persona.continue", kind: eventCallback, exact: "continue_chat", mode: ModePersona, state: StateExchanging, fn: b.continuePersonaChat},
		{name: "persona.finish", kind: eventCallback, exact: "finish_talk", mode: ModePersona, state: stateAny, fn: b.finishToMenu},
		{name: "persona.message", kind: eventText, mode: ModePersona, state: StateExchanging, fn: b.handlePersonaMessage},

		// Quiz.
		{name: "quiz.topic", kind: eventCallback, prefix: "quiz_topic_", mode: ModeQuiz, state: StateSelecting, fn: b.quizTopicSelected},
		{name: "quiz.continue", kind: eventCallback, prefix: "quiz_continue_", mode: ModeQuiz, state: StateAnswering, fn: b.nextQuizQuestion},
		{name: "quiz.change_topic", kind: eventCallback, exact: "quiz_change_topic", mode: ModeQuiz, state: stateAny, fn: b.changeQuizTopic},
		{name: "quiz.finish", kind: eventCallback, exact: "quiz_finish", mode: ModeQuiz, state: stateAny, fn: b.finishQuiz},
		{name: "quiz.answer", kind: eventText, mode: ModeQuiz, state: StateAnswering, fn: b.handleQuizAnswer},

		// Translator.
		{name: "translate.selected", kind: eventCallback, prefix: "languages_", mode: ModeTranslate, state: StateSelecting, fn: b.languageSelected},
		{name: "translate.change", kind: eventCallback, exact: "change_language", mode: ModeTranslate, state: stateAny, fn: b.changeLanguage},
		{name: "translate.finish", kind: eventCallback, exact: "finish_translate", mode: ModeTranslate, state: stateAny, fn: b.finishToMenu},
		{name: "translate.message", kind: eventText, mode: ModeTranslate, state: StateExchanging, fn: b.handleTranslateMessage},

		// Voice dialog.
		{name: "voice.stop", kind: eventCallback, exact: "voice_stop", mode: ModeVoice, state: stateAny, fn: b.finishToMenu},
		{name: "voice.clip", kind: eventVoice, mode: ModeVoice, state: StateExchanging, fn: b.handleVoiceClip},

		// Mode entry buttons from the main menu (or any stale menu message):
		// reachable from any mode, entry resets the previous mode's fields.
		{name: "menu.fact", kind: eventCallback, exact: "random_fact", mode: modeAny, state: stateAny, fn: b.startFact},
		{name: "menu.chat", kind: eventCallback, exact: "gpt_interface", mode: modeAny, state: stateAny, fn: b.startChat},
		{name: "menu.persona", kind: eventCallback, exact: "talk_interface", mode: modeAny, state: stateAny, fn: b.startPersona},
		{name: "menu.quiz", kind: eventCallback, exact: "quiz_interface", mode: modeAny, state: stateAny, fn: b.startQuiz},
		{name: "menu.translate", kind: eventCallback, exact: "translate_interface", mode: modeAny, state: stateAny, fn: b.startTranslate},
		{name: "menu.voice", kind: eventCallback, exact: "start_voice_dialog", mode: modeAny, state: stateAny, fn: b.startVoice},

		// Global fallback.
		{name: "menu.main", kind: eventCallback, exact: "main_menu", mode: modeAny, state: stateAny, fn: b.finishToMenu},
	}
}
