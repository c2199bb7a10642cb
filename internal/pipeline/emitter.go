package pipeline

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// Emitter receives finalized rows in period order.
type Emitter interface {
	Emit(ctx context.Context, row AggregatedRow) error
	// Close flushes anything buffered and releases the emitter.
	Close(ctx context.Context) error
}

// FormatRow renders a row as label followed by one field per column.
func FormatRow(row AggregatedRow, delimiter string) string {
	fields := make([]string, 0, len(row.Values)+1)
	fields = append(fields, row.Label)
	for _, v := range row.Values {
		fields = append(fields, v.String())
	}
	return strings.Join(fields, delimiter)
}

// DelimitedEmitter writes one text line per row.
type DelimitedEmitter struct {
	w         *bufio.Writer
	delimiter string
}

// NewDelimitedEmitter creates an emitter writing to w.
func NewDelimitedEmitter(w io.Writer, delimiter string) *DelimitedEmitter {
	return &DelimitedEmitter{w: bufio.NewWriter(w), delimiter: delimiter}
}

func (e *DelimitedEmitter) Emit(_ context.Context, row AggregatedRow) error {
	if _, err := e.w.WriteString(FormatRow(row, e.delimiter)); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

func (e *DelimitedEmitter) Close(_ context.Context) error {
	return e.w.Flush()
}

// MultiEmitter fans each row out to every emitter in order.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ctx context.Context, row AggregatedRow) error {
	for _, e := range m {
		if err := e.Emit(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every emitter, even after a failure, and joins the errors.
func (m MultiEmitter) Close(ctx context.Context) error {
	var errs []error
	for _, e := range m {
		if err := e.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
