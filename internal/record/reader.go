package record

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const maxLineBytes = 1 << 20

// ReadOptions controls how an input stream is turned into records.
type ReadOptions struct {
	Splitter Splitter
	SkipRows int // leading lines ignored without inspection
}

// ReadAll drains r, parses every line after the skipped header rows and
// returns the records sorted by timestamp. Rows with equal timestamps keep
// their input order. The first unparseable timestamp aborts the read.
// Input is UTF-8; a leading byte order mark is dropped.
func ReadAll(ctx context.Context, r io.Reader, opts ReadOptions) ([]Record, error) {
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= opts.SkipRows {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := ParseLine(scanner.Text(), lineNo, opts.Splitter)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	SortByTime(records)
	return records, nil
}

// SortByTime orders records by ascending timestamp, stable for ties.
func SortByTime(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
