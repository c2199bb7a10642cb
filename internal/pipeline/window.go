package pipeline

import (
	"time"

	"github.com/sanspareilsmyn/agg/internal/reduce"
)

// AggregatedRow holds the finalized aggregates of one period window.
type AggregatedRow struct {
	Label  string
	Start  time.Time
	End    time.Time
	Values []Aggregate // one per column, index-aligned to the input columns
}

// Aggregate is one column's reduced value in a window.
// A zero Count means the column had no observations and renders blank.
type Aggregate struct {
	Value float64
	Count int
}

// Blank reports whether the column had no observations.
func (a Aggregate) Blank() bool {
	return a.Count == 0
}

// String renders the aggregate for delimited output.
func (a Aggregate) String() string {
	if a.Blank() {
		return ""
	}
	return reduce.FormatValue(a.Value)
}

// window holds the accumulation state of the open period.
type window struct {
	start   time.Time
	end     time.Time
	columns [][]float64 // accumulator bag per column
}

// newWindow creates a window with width empty column bags.
func newWindow(start, end time.Time, width int) *window {
	return &window{
		start:   start,
		end:     end,
		columns: make([][]float64, width),
	}
}

func (w *window) observe(column int, v float64) {
	w.columns[column] = append(w.columns[column], v)
}

// observations returns the total number of values across all columns.
func (w *window) observations() int {
	n := 0
	for _, bag := range w.columns {
		n += len(bag)
	}
	return n
}

// advance clears every bag, keeping capacity, and moves the window.
func (w *window) advance(start, end time.Time) {
	for i := range w.columns {
		w.columns[i] = w.columns[i][:0]
	}
	w.start = start
	w.end = end
}

// finalize reduces the window into one value per column.
func (w *window) finalize(fn reduce.Func) []Aggregate {
	values := make([]Aggregate, len(w.columns))
	for i, bag := range w.columns {
		if len(bag) == 0 {
			continue
		}
		values[i] = Aggregate{Value: fn.Apply(bag), Count: len(bag)}
	}
	return values
}
