package bot

import (
	"sync"
	"time"

	"github.com/MomoTMR/MomoTMR-bot/llm"
)

// Mode is one top-level bot feature.
type Mode int

const (
	ModeNone Mode = iota
	ModeFact
	ModeChat
	ModePersona
	ModeQuiz
	ModeTranslate
	ModeVoice
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeFact:
		return "fact"
	case ModeChat:
		return "chat"
	case ModePersona:
		return "persona"
	case ModeQuiz:
		return "quiz"
	case ModeTranslate:
		return "translate"
	case ModeVoice:
		return "voice"
	default:
		return "unknown"
	}
}

// State is a position inside a mode's conversation machine.
type State int

const (
	StateNone State = iota
	StateSelecting
	StateExchanging
	StateAnswering
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateSelecting:
		return "selecting"
	case StateExchanging:
		return "exchanging"
	case StateAnswering:
		return "answering"
	default:
		return "unknown"
	}
}

// Session is one user's in-memory conversation state. At most one mode is
// active at a time; entering a mode wipes whatever the previous mode left
// behind. All methods are safe for concurrent use — Telegram delivers a
// user's events in order, but a double-press can overlap with a slow
// handler.
type Session struct {
	mu            sync.Mutex
	mode          Mode
	state         State
	history       []llm.Message
	selectionKey  string
	correct       int
	total         int
	currentAnswer string
	menuMessageID int
	pending       *time.Timer
}

// Enter activates a mode, clearing every field the previous mode owned.
func (s *Session) Enter(mode Mode, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelReturnLocked()
	s.clearModeFieldsLocked()
	s.mode = mode
	s.state = state
}

// Reset returns the session to the blank no-mode state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelReturnLocked()
	s.clearModeFieldsLocked()
	s.mode = ModeNone
	s.state = StateNone
}

func (s *Session) clearModeFieldsLocked() {
	s.history = nil
	s.selectionKey = ""
	s.correct = 0
	s.total = 0
	s.currentAnswer = ""
	s.menuMessageID = 0
}

func (s *Session) Snapshot() (Mode, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.state
}

func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Session) Selection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionKey
}

func (s *Session) SetSelection(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectionKey = key
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectionKey = ""
}

func (s *Session) AppendTurn(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, llm.Message{Role: role, Content: content})
}

// History returns a copy of the conversation turns accumulated so far.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *Session) SetCurrentAnswer(letter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentAnswer = letter
}

func (s *Session) CurrentAnswer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentAnswer
}

// IncTotal counts a generated question and returns the new total.
func (s *Session) IncTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	return s.total
}

func (s *Session) AddCorrect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.correct++
}

func (s *Session) Score() (correct, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correct, s.total
}

func (s *Session) SetMenuMessageID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuMessageID = id
}

func (s *Session) MenuMessageID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuMessageID
}

// ScheduleReturn arms a deferred transition (the "show the menu in a few
// seconds" step). A new inbound event cancels it via CancelReturn, so the
// timer never races a fresh user action.
func (s *Session) ScheduleReturn(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelReturnLocked()
	s.pending = time.AfterFunc(d, fn)
}

func (s *Session) CancelReturn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelReturnLocked()
}

func (s *Session) cancelReturnLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// Store keeps sessions keyed by chat id, created lazily on first contact.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

func (st *Store) Get(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[chatID]
	if !ok {
		s = &Session{}
		st.sessions[chatID] = s
	}
	return s
}
