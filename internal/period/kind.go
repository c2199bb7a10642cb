package period

import (
	"strings"
	"time"
)

// Kind is the length of an aggregation period.
type Kind int

const (
	Daily Kind = iota
	Weekly
	Monthly
	Yearly
)

// All lists every period kind in selection order.
var All = [...]Kind{Daily, Weekly, Monthly, Yearly}

// Flag returns the single-character selector for the kind.
func (k Kind) Flag() byte {
	switch k {
	case Daily:
		return 'd'
	case Weekly:
		return 'w'
	case Monthly:
		return 'm'
	case Yearly:
		return 'y'
	}
	return '?'
}

// String returns the full lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	}
	return "unknown"
}

// Wall returns t's wall-clock reading as a UTC time, dropping its zone.
// Period arithmetic runs on wall clocks so a day that starts after a
// DST jump still begins at midnight.
func Wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// RoundDown returns the inclusive wall-clock start of the period
// containing t. Weekly periods are not aligned to a weekday: they start
// at t itself, so the first observation anchors every following week.
func (k Kind) RoundDown(t time.Time) time.Time {
	w := Wall(t)
	switch k {
	case Daily:
		return time.Date(w.Year(), w.Month(), w.Day(), 0, 0, 0, 0, time.UTC)
	case Weekly:
		return w
	case Monthly:
		return time.Date(w.Year(), w.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(w.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return w
}

// Next returns the wall-clock start of the period following the one
// starting at t. Month and year lengths vary with the calendar.
func (k Kind) Next(t time.Time) time.Time {
	w := Wall(t)
	switch k {
	case Daily:
		return w.AddDate(0, 0, 1)
	case Weekly:
		return w.AddDate(0, 0, 7)
	case Monthly:
		return w.AddDate(0, 1, 0)
	case Yearly:
		return w.AddDate(1, 0, 0)
	}
	return w
}

// Label renders a period start for output.
func (k Kind) Label(start time.Time) string {
	switch k {
	case Daily, Weekly:
		return start.Format("2006-01-02")
	case Monthly:
		return start.Format("2006-01")
	case Yearly:
		return start.Format("2006")
	}
	return start.Format(time.RFC3339)
}

// Parse selects a kind by its single-character flag or its
// case-insensitive name.
func Parse(s string) (Kind, error) {
	for _, k := range All {
		if len(s) == 1 && s[0] == k.Flag() {
			return k, nil
		}
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, &UnknownPeriodError{Input: s}
}

// Names returns the names of all kinds, in selection order.
func Names() []string {
	names := make([]string, 0, len(All))
	for _, k := range All {
		names = append(names, k.String())
	}
	return names
}
