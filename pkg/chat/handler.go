package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/sqlchat/pkg/logger"
	"github.com/papercomputeco/sqlchat/pkg/query"
	"github.com/papercomputeco/sqlchat/pkg/render"
	"github.com/papercomputeco/sqlchat/pkg/transcript"
)

// DefaultErrorPrefix starts every error bubble.
const DefaultErrorPrefix = "⚠️ エラー: "

// DefaultFenceLanguage tags the fenced block around generated SQL.
const DefaultFenceLanguage = "sql"

// Asker turns a question into SQL.
type Asker interface {
	Ask(ctx context.Context, question string) (*query.Response, error)
}

// Formatter pretty-prints SQL.
type Formatter interface {
	Format(sql string) (string, error)
}

// Handler runs chat turns. It holds no conversation state; see Session.
type Handler struct {
	asker         Asker
	formatter     Formatter
	logger        *zap.Logger
	errorPrefix   string
	fenceLanguage string
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithErrorPrefix replaces DefaultErrorPrefix.
func WithErrorPrefix(prefix string) Option {
	return func(h *Handler) { h.errorPrefix = prefix }
}

// WithFenceLanguage replaces DefaultFenceLanguage.
func WithFenceLanguage(lang string) Option {
	return func(h *Handler) { h.fenceLanguage = lang }
}

// NewHandler creates a Handler.
func NewHandler(asker Asker, formatter Formatter, opts ...Option) *Handler {
	h := &Handler{
		asker:         asker,
		formatter:     formatter,
		logger:        zap.NewNop(),
		errorPrefix:   DefaultErrorPrefix,
		fenceLanguage: DefaultFenceLanguage,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Begin starts a turn for the text field's value. Blank input returns a nil
// turn and no effects. Otherwise the user bubble is appended and the text
// field is cleared and disabled until Complete's effects are applied.
func (h *Handler) Begin(input string) (*Turn, []Effect) {
	question := strings.TrimSpace(input)
	if question == "" {
		return nil, nil
	}

	h.logger.Debug("turn started", zap.String("question", logger.Truncate(question, 100)))

	return &Turn{Question: question}, []Effect{
		AppendBubble{Role: transcript.User, Text: question},
		ClearInput{},
		SetInputEnabled{Enabled: false},
	}
}

// Complete asks for SQL, formats and renders it. Every failure inside, a
// panic included, becomes an error bubble. The returned effects always end by
// re-enabling and focusing the text field and scrolling to the bottom.
func (h *Handler) Complete(ctx context.Context, t *Turn) (effects []Effect) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("turn panicked", zap.Any("panic", r))
			effects = append(effects, h.fail(t, &UnhandledFailure{Err: fmt.Errorf("%v", r)}))
		}
		effects = append(effects,
			SetInputEnabled{Enabled: true},
			FocusInput{},
			ScrollToBottom{},
		)
	}()

	if err := h.answer(ctx, t); err != nil {
		var failure *query.RequestFailure
		if !errors.As(err, &failure) {
			err = &UnhandledFailure{Err: err}
		}
		return append(effects, h.fail(t, err))
	}

	h.logger.Debug("turn answered", zap.String("sql", logger.Truncate(t.FormattedSQL, 100)))

	return append(effects, AppendBubble{
		Role:     transcript.Assistant,
		Text:     t.Reply,
		Markdown: true,
	})
}

// Run is Begin followed by Complete.
func (h *Handler) Run(ctx context.Context, input string) (*Turn, []Effect) {
	t, effects := h.Begin(input)
	if t == nil {
		return nil, nil
	}

	return t, append(effects, h.Complete(ctx, t)...)
}

func (h *Handler) answer(ctx context.Context, t *Turn) error {
	resp, err := h.asker.Ask(ctx, t.Question)
	if err != nil {
		return err
	}
	t.SQL = resp.SQL

	formatted, err := h.formatter.Format(render.StripFence(resp.SQL))
	if err != nil {
		return fmt.Errorf("format sql: %w", err)
	}
	t.FormattedSQL = formatted

	t.Reply = render.Fence(h.fenceLanguage, formatted)
	t.HTML = render.Markdown(t.Reply)
	return nil
}

func (h *Handler) fail(t *Turn, err error) Effect {
	h.logger.Warn("turn failed", zap.String("question", logger.Truncate(t.Question, 100)), zap.Error(err))

	t.Err = err
	t.Reply = h.errorPrefix + err.Error()
	t.HTML = render.EscapeHTML(t.Reply)
	return AppendBubble{Role: transcript.Assistant, Text: t.Reply}
}
