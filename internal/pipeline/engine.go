package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/agg/internal/period"
	"github.com/sanspareilsmyn/agg/internal/record"
	"github.com/sanspareilsmyn/agg/internal/reduce"
)

type engineState int

const (
	stateEmpty engineState = iota
	stateAccumulating
	stateFlushing
	stateDone
)

func (s engineState) String() string {
	switch s {
	case stateEmpty:
		return "empty"
	case stateAccumulating:
		return "accumulating"
	case stateFlushing:
		return "flushing"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// EmitFunc receives each finalized window in period order.
type EmitFunc func(AggregatedRow) error

// Engine folds timestamp-ordered records into contiguous period windows
// and reduces every column of each window with one function.
type Engine struct {
	kind    period.Kind
	fn      reduce.Func
	logger  *zap.Logger
	metrics *Metrics

	state  engineState
	window *window
}

// NewEngine creates an Engine for one run.
func NewEngine(kind period.Kind, fn reduce.Func, metrics *Metrics, logger *zap.Logger) *Engine {
	logger.Debug("Engine initialized",
		zap.Stringer("period", kind),
		zap.Stringer("function", fn),
	)
	return &Engine{
		kind:    kind,
		fn:      fn,
		logger:  logger,
		metrics: metrics,
		state:   stateEmpty,
	}
}

// Fold consumes records, which must be sorted by ascending timestamp, and
// calls emit once per window from the first record's period through the
// last record's period. Windows without observations are emitted too, so
// the labels form an unbroken sequence. No records means no windows.
func (e *Engine) Fold(records []record.Record, emit EmitFunc) error {
	if e.state != stateEmpty {
		return fmt.Errorf("engine already used (state %s)", e.state)
	}
	if len(records) == 0 {
		e.logger.Debug("No records to aggregate")
		e.state = stateDone
		return nil
	}

	e.begin(records)

	for _, rec := range records {
		if err := e.add(rec, emit); err != nil {
			return err
		}
	}

	// The last window is always flushed, even when no boundary was crossed.
	if err := e.flush(emit); err != nil {
		return err
	}
	e.state = stateDone
	e.logger.Debug("Fold complete", zap.Int("records", len(records)))
	return nil
}

// begin opens the first window at the period containing the earliest
// timestamp and sizes the bags to the widest record.
func (e *Engine) begin(records []record.Record) {
	minTS := period.Wall(records[0].Timestamp)
	maxFields := 0
	for _, rec := range records {
		if ts := period.Wall(rec.Timestamp); ts.Before(minTS) {
			minTS = ts
		}
		if len(rec.Fields) > maxFields {
			maxFields = len(rec.Fields)
		}
	}

	start := e.kind.RoundDown(minTS)
	e.window = newWindow(start, e.kind.Next(start), maxFields)
	e.state = stateAccumulating
	e.metrics.observeColumns(maxFields)

	e.logger.Debug("Opened first window",
		zap.Time("window_start", e.window.start),
		zap.Time("window_end", e.window.end),
		zap.Int("columns", maxFields),
	)
}

// add flushes every window the record's timestamp has moved past, then
// folds the record's value fields into the open window.
// Windows are compared on the record's wall clock.
func (e *Engine) add(rec record.Record, emit EmitFunc) error {
	ts := period.Wall(rec.Timestamp)
	if ts.Before(e.window.start) {
		return fmt.Errorf("%w: line %d at %s precedes window start %s",
			ErrRecordsOutOfOrder, rec.Line, ts, e.window.start)
	}

	for !ts.Before(e.window.end) {
		if err := e.flush(emit); err != nil {
			return err
		}
		e.window.advance(e.window.end, e.kind.Next(e.window.end))
	}

	for i, field := range rec.Fields {
		text := strings.TrimSpace(field)
		if text == "" {
			e.metrics.observeBlankField()
			continue
		}

		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			e.metrics.observeFailure(failureField)
			return &FieldParseError{Line: rec.Line, Column: i + 1, Text: field, Err: err}
		}
		e.window.observe(i, v)
		e.metrics.observeValue(i)
	}
	return nil
}

// flush emits the open window. The caller advances or finishes afterwards.
func (e *Engine) flush(emit EmitFunc) error {
	e.state = stateFlushing
	row := AggregatedRow{
		Label:  e.kind.Label(e.window.start),
		Start:  e.window.start,
		End:    e.window.end,
		Values: e.window.finalize(e.fn),
	}
	observations := e.window.observations()

	e.logger.Debug("Flushing window",
		zap.String("label", row.Label),
		zap.Int("observations", observations),
	)

	if err := emit(row); err != nil {
		return fmt.Errorf("%w: %w", ErrEmitFailed, err)
	}
	e.metrics.observeFlush(observations)
	e.state = stateAccumulating
	return nil
}
