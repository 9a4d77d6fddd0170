package chat

import "github.com/papercomputeco/sqlchat/pkg/transcript"

// Effect is a UI change produced by a turn. Surfaces interpret effects with
// Apply; the turn logic never touches a UI directly.
type Effect interface {
	effect()
}

// AppendBubble adds a message to the conversation.
type AppendBubble struct {
	Role     transcript.Role
	Text     string
	Markdown bool
}

// ClearInput empties the text field.
type ClearInput struct{}

// SetInputEnabled enables or disables the text field.
type SetInputEnabled struct {
	Enabled bool
}

// FocusInput returns keyboard focus to the text field.
type FocusInput struct{}

// ScrollToBottom scrolls the conversation to its newest bubble.
type ScrollToBottom struct{}

func (AppendBubble) effect()    {}
func (ClearInput) effect()      {}
func (SetInputEnabled) effect() {}
func (FocusInput) effect()      {}
func (ScrollToBottom) effect()  {}

// UI is a surface that can carry out effects.
type UI interface {
	AppendBubble(role transcript.Role, text string, markdown bool)
	ClearInput()
	SetInputEnabled(enabled bool)
	FocusInput()
	ScrollToBottom()
}

// Apply carries out effects on ui in order.
func Apply(ui UI, effects ...Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case AppendBubble:
			ui.AppendBubble(e.Role, e.Text, e.Markdown)
		case ClearInput:
			ui.ClearInput()
		case SetInputEnabled:
			ui.SetInputEnabled(e.Enabled)
		case FocusInput:
			ui.FocusInput()
		case ScrollToBottom:
			ui.ScrollToBottom()
		}
	}
}
