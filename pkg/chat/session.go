package chat

import (
	"context"
	"sync"

	"github.com/papercomputeco/sqlchat/pkg/transcript"
)

// State is a snapshot of a Session.
type State struct {
	InputEnabled bool
	InputValue   string
	Focused      bool
	AtBottom     bool
	Bubbles      []*transcript.Bubble
}

// Session keeps the state a surface shows: the conversation log and the text
// field. The disabled text field doubles as the gate that keeps a single turn
// in flight.
type Session struct {
	handler *Handler
	log     *transcript.Log

	mu       sync.Mutex
	enabled  bool
	value    string
	focused  bool
	atBottom bool
}

// NewSession creates a session writing to log.
func NewSession(handler *Handler, log *transcript.Log) *Session {
	return &Session{
		handler:  handler,
		log:      log,
		enabled:  true,
		focused:  true,
		atBottom: true,
	}
}

// Log returns the session's conversation log.
func (s *Session) Log() *transcript.Log {
	return s.log
}

// SetInput stores the text field's current value.
func (s *Session) SetInput(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
}

// Submit runs one turn for input. Blank input is a no-op returning a nil
// turn. ErrBusy is returned if a turn is already in flight.
func (s *Session) Submit(ctx context.Context, input string) (*Turn, error) {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.value = input
	t, effects := s.handler.Begin(input)
	ui := &sessionUI{s: s}
	Apply(ui, effects...)
	s.mu.Unlock()

	if t == nil {
		return nil, nil
	}

	effects = s.handler.Complete(ctx, t)

	s.mu.Lock()
	Apply(ui, effects...)
	s.mu.Unlock()

	t.Bubbles = ui.appended
	return t, nil
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		InputEnabled: s.enabled,
		InputValue:   s.value,
		Focused:      s.focused,
		AtBottom:     s.atBottom,
		Bubbles:      s.log.Bubbles(),
	}
}

// sessionUI applies effects to a Session and remembers the bubbles it
// appended. Callers hold s.mu.
type sessionUI struct {
	s        *Session
	appended []*transcript.Bubble
}

func (u *sessionUI) AppendBubble(role transcript.Role, text string, markdown bool) {
	u.appended = append(u.appended, u.s.log.Append(role, text, markdown))
	u.s.atBottom = false
}

func (u *sessionUI) ClearInput() {
	u.s.value = ""
}

func (u *sessionUI) SetInputEnabled(enabled bool) {
	u.s.enabled = enabled
	if !enabled {
		u.s.focused = false
	}
}

func (u *sessionUI) FocusInput() {
	u.s.focused = true
}

func (u *sessionUI) ScrollToBottom() {
	u.s.atBottom = true
}
