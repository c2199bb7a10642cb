package record

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		line      string
		want      []string
	}{
		{name: "whitespace runs", line: "2020-01-01  1\t\t2 ", want: []string{"2020-01-01", "1", "2"}},
		{name: "comma keeps empty fields", delimiter: ",", line: "a,,b,", want: []string{"a", "", "b", ""}},
		{name: "multi character delimiter", delimiter: "::", line: "a::b::c", want: []string{"a", "b", "c"}},
		{name: "empty line whitespace", line: "", want: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Splitter{Delimiter: tc.delimiter}.Split(tc.line)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseLine(t *testing.T) {
	rec, err := ParseLine("2020-01-01 12:30,1, ,abc", 7, Splitter{Delimiter: ","})
	require.NoError(t, err)

	assert.Equal(t, 7, rec.Line)
	assert.Equal(t, time.Date(2020, 1, 1, 12, 30, 0, 0, time.UTC), rec.Timestamp)
	assert.Equal(t, []string{"1", " ", "abc"}, rec.Fields)
}

func TestParseLine_TimestampOnly(t *testing.T) {
	rec, err := ParseLine("2021-06-15", 1, Splitter{})
	require.NoError(t, err)
	assert.Empty(t, rec.Fields)
	assert.Equal(t, time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC), rec.Timestamp)
}

func TestParseLine_BadTimestamp(t *testing.T) {
	for _, line := range []string{"2020-13-45,1", ",1", ""} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseLine(line, 3, Splitter{Delimiter: ","})
			require.Error(t, err)

			var dpe *DateParseError
			require.True(t, errors.As(err, &dpe))
			assert.Equal(t, 3, dpe.Line)
			assert.ErrorIs(t, err, ErrDateParseFailed)
			assert.Contains(t, err.Error(), "line 3")
		})
	}
}

func TestReadAll_SkipsHeaderAndSorts(t *testing.T) {
	input := strings.Join([]string{
		"timestamp,value",
		"this line is ignored too",
		"2020-01-03,3",
		"2020-01-01,1",
		"2020-01-02,2a",
		"2020-01-01,1b",
	}, "\n")

	records, err := ReadAll(context.Background(), strings.NewReader(input), ReadOptions{
		Splitter: Splitter{Delimiter: ","},
		SkipRows: 2,
	})
	require.NoError(t, err)
	require.Len(t, records, 4)

	var got []string
	var lines []int
	for _, r := range records {
		got = append(got, r.Fields[0])
		lines = append(lines, r.Line)
	}
	assert.Equal(t, []string{"1", "1b", "2a", "3"}, got)
	assert.Equal(t, []int{4, 6, 5, 3}, lines)
}

func TestReadAll_Empty(t *testing.T) {
	records, err := ReadAll(context.Background(), strings.NewReader("header\n"), ReadOptions{SkipRows: 1})
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = ReadAll(context.Background(), strings.NewReader(""), ReadOptions{SkipRows: 5})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadAll_DateErrorReportsPhysicalLine(t *testing.T) {
	input := "header\n2020-01-01 1\nhello 2\n2020-01-02 3\n"

	_, err := ReadAll(context.Background(), strings.NewReader(input), ReadOptions{SkipRows: 1})
	require.Error(t, err)

	var dpe *DateParseError
	require.True(t, errors.As(err, &dpe))
	assert.Equal(t, 3, dpe.Line)
	assert.Equal(t, "hello", dpe.Text)
}

func TestReadAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadAll(ctx, strings.NewReader("2020-01-01 1\n"), ReadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "abc", Snippet("abc", 10))
	assert.Equal(t, "ab...", Snippet("abcdef", 2))
	assert.Equal(t, "...", Snippet("abc", 0))
}

func TestSnippet_KeepsRunesWhole(t *testing.T) {
	// "é" is two bytes; a cut at byte 2 would split it.
	assert.Equal(t, "a...", Snippet("aéb", 2))
	assert.Equal(t, "aé...", Snippet("aéb", 3))
	assert.Equal(t, "...", Snippet("日本", 2))
}

func TestReadAll_StripsByteOrderMark(t *testing.T) {
	input := "\ufeff2020-01-01 00:00,1\n2020-01-02 00:00,2\n"

	records, err := ReadAll(context.Background(), strings.NewReader(input), ReadOptions{
		Splitter: Splitter{Delimiter: ","},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), records[0].Timestamp)
	assert.Equal(t, 1, records[0].Line)
}

func TestParseLine_KeepsWrittenWallClock(t *testing.T) {
	rec, err := ParseLine("2018-11-04T00:30:00-03:00 1", 1, Splitter{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, 11, 4, 0, 30, 0, 0, time.UTC), rec.Timestamp)
}
