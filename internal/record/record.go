package record

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Record is one parsed input row: a timestamp plus the raw value fields
// that followed it. Value fields are parsed later by the aggregation
// engine, which decides per field whether it is blank or numeric.
type Record struct {
	Line      int // 1-based line number in the input, header rows included
	Timestamp time.Time
	Fields    []string
}

// Splitter breaks a line into fields.
// An empty Delimiter splits on runs of whitespace.
type Splitter struct {
	Delimiter string
}

// Split returns the fields of line.
func (s Splitter) Split(line string) []string {
	if s.Delimiter == "" {
		return strings.Fields(line)
	}
	return strings.Split(line, s.Delimiter)
}

// Snippet returns text truncated to at most maxLength bytes for use in
// messages. The cut never splits a multi-byte rune.
func Snippet(text string, maxLength int) string {
	if maxLength <= 0 {
		return "..."
	}
	if len(text) <= maxLength {
		return text
	}
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
