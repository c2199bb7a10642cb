package record

import (
	"errors"
	"fmt"
)

var (
	ErrDateParseFailed = errors.New("failed to parse timestamp")
	ErrReadFailed      = errors.New("failed to read input")
)

const snippetLength = 64

// DateParseError reports a timestamp field that could not be parsed.
// It is fatal to the whole run.
type DateParseError struct {
	Line int
	Text string
	Err  error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("could not parse the date/time %q on line %d", Snippet(e.Text, snippetLength), e.Line)
}

func (e *DateParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDateParseFailed}
	}
	return []error{ErrDateParseFailed, e.Err}
}
