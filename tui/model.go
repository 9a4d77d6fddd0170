// Package tui is the terminal chat surface.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/papercomputeco/sqlchat/pkg/chat"
	"github.com/papercomputeco/sqlchat/pkg/transcript"
)

const (
	defaultWidth  = 80
	defaultHeight = 20
	chromeHeight  = 3 // status line, blank line, input
)

// turnDoneMsg carries the effects of a completed turn back into Update.
type turnDoneMsg struct {
	effects []chat.Effect
}

// Config configures the Model.
type Config struct {
	// Endpoint is shown in the status line.
	Endpoint string

	// Style is a glamour standard style ("dark", "light", "notty"). Empty
	// picks dark or light from the terminal background.
	Style string
}

// Model is the bubbletea model for a chat session.
type Model struct {
	config  Config
	handler *chat.Handler
	log     *transcript.Log
	logger  *zap.Logger
	ctx     context.Context

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	enabled bool
	width   int
}

// NewModel creates a Model for handler.
func NewModel(ctx context.Context, config Config, handler *chat.Handler, logger *zap.Logger) (*Model, error) {
	ti := textinput.New()
	ti.Placeholder = "質問を入力 (Enter to send, Ctrl+C to exit)"
	ti.Prompt = "│ "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 4096
	ti.Width = defaultWidth - 4
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if config.Style == "" {
		config.Style = "light"
		if termenv.HasDarkBackground() {
			config.Style = "dark"
		}
	}

	m := &Model{
		config:   config,
		handler:  handler,
		log:      transcript.NewLog(),
		logger:   logger,
		ctx:      ctx,
		input:    ti,
		viewport: viewport.New(defaultWidth, defaultHeight),
		spinner:  sp,
		enabled:  true,
		width:    defaultWidth,
	}

	if err := m.setRenderer(defaultWidth); err != nil {
		return nil, err
	}

	return m, nil
}

// Log returns the conversation shown by the model.
func (m *Model) Log() *transcript.Log {
	return m.log
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.enabled {
				return m, nil
			}
			return m, m.submit()

		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if !m.enabled {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeHeight)
		m.input.Width = max(1, msg.Width-4)
		if err := m.setRenderer(msg.Width); err != nil {
			m.logger.Warn("failed to resize markdown renderer", zap.Error(err))
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.enabled {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case turnDoneMsg:
		chat.Apply(modelUI{m}, msg.effects...)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(cmd, vpCmd)
}

// submit starts a turn for the text field's value and returns the command
// that completes it.
func (m *Model) submit() tea.Cmd {
	t, effects := m.handler.Begin(m.input.Value())
	if t == nil {
		return nil
	}
	chat.Apply(modelUI{m}, effects...)

	ctx, handler := m.ctx, m.handler
	complete := func() tea.Msg {
		return turnDoneMsg{effects: handler.Complete(ctx, t)}
	}

	return tea.Batch(m.spinner.Tick, complete)
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	status := m.config.Endpoint
	if !m.enabled {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(statusStyle.Render(ansi.Truncate(status, max(1, m.width), "…")))
	b.WriteString("\n")
	b.WriteString(m.input.View())

	return b.String()
}

// refresh re-renders the whole log into the viewport.
func (m *Model) refresh() {
	bubbles := m.log.Bubbles()
	parts := make([]string, 0, len(bubbles))
	for _, b := range bubbles {
		parts = append(parts, m.renderBubble(b))
	}
	m.viewport.SetContent(strings.Join(parts, "\n"))
}

func (m *Model) renderBubble(b *transcript.Bubble) string {
	switch {
	case b.Role == transcript.User:
		return userBubbleStyle.Render(b.Text) + "\n"
	case b.Markdown:
		out, err := m.renderer.Render(b.Text)
		if err != nil {
			m.logger.Warn("failed to render markdown", zap.Error(err))
			return b.Text + "\n"
		}
		return out
	default:
		return errorBubbleStyle.Render(b.Text) + "\n"
	}
}

func (m *Model) setRenderer(width int) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.config.Style),
		glamour.WithWordWrap(max(20, width-4)),
	)
	if err != nil {
		return err
	}
	m.renderer = r
	return nil
}

// modelUI applies chat effects to the model's widgets.
type modelUI struct {
	m *Model
}

func (u modelUI) AppendBubble(role transcript.Role, text string, markdown bool) {
	u.m.log.Append(role, text, markdown)
	u.m.refresh()
}

func (u modelUI) ClearInput() {
	u.m.input.Reset()
}

func (u modelUI) SetInputEnabled(enabled bool) {
	u.m.enabled = enabled
	if !enabled {
		u.m.input.Blur()
	}
}

func (u modelUI) FocusInput() {
	u.m.input.Focus()
}

func (u modelUI) ScrollToBottom() {
	u.m.viewport.GotoBottom()
}
