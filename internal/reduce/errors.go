package reduce

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFunction = errors.New("unknown aggregation function")

// UnknownFunctionError reports an aggregation function name that matches
// no Func.
type UnknownFunctionError struct {
	Input string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("no corresponding aggregation function for %q; available options: %s",
		e.Input, strings.Join(Names(), ", "))
}

func (e *UnknownFunctionError) Unwrap() error {
	return ErrUnknownFunction
}
