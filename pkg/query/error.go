package query

import (
	"errors"
	"net/http"
)

// ErrMissingSQL is returned when a successful response has no sql field.
var ErrMissingSQL = errors.New("response has no sql field")

// RequestFailure is returned when the endpoint answers with a non-2xx status.
type RequestFailure struct {
	StatusCode int
	StatusText string
}

// Error returns the status text alone, the way it is shown to the user.
func (e *RequestFailure) Error() string {
	if e.StatusText != "" {
		return e.StatusText
	}

	return http.StatusText(e.StatusCode)
}
