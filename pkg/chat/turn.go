// Package chat runs a single question-to-SQL chat turn and describes its
// outcome as UI effects.
package chat

import (
	"errors"

	"github.com/papercomputeco/sqlchat/pkg/transcript"
)

// ErrBusy is returned when a turn is submitted while another is in flight.
var ErrBusy = errors.New("a question is already being answered")

// Turn is one question and its answer. It lives only as long as the turn.
type Turn struct {
	Question string

	// SQL is the statement as returned by the endpoint.
	SQL string

	// FormattedSQL is SQL after pretty-printing.
	FormattedSQL string

	// Reply is the assistant message text: fenced SQL, or the error message.
	Reply string

	// HTML is Reply as rendered into the assistant bubble.
	HTML string

	// Err is set when the turn failed.
	Err error

	// Bubbles are the bubbles a Session appended for this turn.
	Bubbles []*transcript.Bubble
}

// UnhandledFailure wraps any failure other than a non-2xx response:
// transport errors, undecodable bodies and formatter errors or panics.
type UnhandledFailure struct {
	Err error
}

func (e *UnhandledFailure) Error() string {
	return e.Err.Error()
}

func (e *UnhandledFailure) Unwrap() error {
	return e.Err
}
