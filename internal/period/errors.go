package period

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPeriod = errors.New("unknown aggregation period")

// UnknownPeriodError reports a period selector that matches no Kind.
type UnknownPeriodError struct {
	Input string
}

func (e *UnknownPeriodError) Error() string {
	return fmt.Sprintf("could not find period corresponding to %q; valid periods: %s",
		e.Input, strings.Join(Names(), ", "))
}

func (e *UnknownPeriodError) Unwrap() error {
	return ErrUnknownPeriod
}
