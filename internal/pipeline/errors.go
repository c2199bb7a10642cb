package pipeline

import (
	"errors"
	"fmt"

	"github.com/sanspareilsmyn/agg/internal/record"
)

var (
	ErrFieldParseFailed      = errors.New("failed to parse value field")
	ErrInputOpenFailed       = errors.New("failed to open input")
	ErrEmitFailed            = errors.New("failed to emit aggregated row")
	ErrInvalidKafkaConfig    = errors.New("invalid Kafka configuration provided")
	ErrKafkaWriteFailed      = errors.New("failed to write message to Kafka")
	ErrMetricsExportFailed   = errors.New("failed to export run metrics")
	ErrEmitterCreationFailed = errors.New("failed to create emitter")
	ErrRecordsOutOfOrder     = errors.New("records are not sorted by timestamp")
)

const snippetLength = 64

// FieldParseError reports a non-blank value field that is not a number.
// Column is the 1-based position among the value columns.
type FieldParseError struct {
	Line   int
	Column int
	Text   string
	Err    error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("could not parse the field %q in column %d on line %d",
		record.Snippet(e.Text, snippetLength), e.Column, e.Line)
}

func (e *FieldParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFieldParseFailed}
	}
	return []error{ErrFieldParseFailed, e.Err}
}
