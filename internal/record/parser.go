package record

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/sanspareilsmyn/agg/internal/period"
)

// ParseLine converts one raw line into a Record. Field 0 is the timestamp,
// kept as the wall-clock reading it was written with; the remaining fields
// are kept unparsed.
func ParseLine(line string, lineNo int, splitter Splitter) (Record, error) {
	fields := splitter.Split(line)

	var stamp string
	if len(fields) > 0 {
		stamp = strings.TrimSpace(fields[0])
	}
	if stamp == "" {
		return Record{}, &DateParseError{Line: lineNo, Text: stamp}
	}

	// Parsing in UTC never lands on a nonexistent local time, so the
	// wall clock survives untouched.
	ts, err := dateparse.ParseIn(stamp, time.UTC)
	if err != nil {
		return Record{}, &DateParseError{Line: lineNo, Text: stamp, Err: err}
	}

	return Record{
		Line:      lineNo,
		Timestamp: period.Wall(ts),
		Fields:    fields[1:],
	}, nil
}
