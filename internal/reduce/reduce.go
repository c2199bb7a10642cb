package reduce

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Func is the reduction applied to each column's observations in a window.
type Func int

const (
	Sum Func = iota
	Mean
	Count
	Max
	Min
)

// All lists every reduction in help-text order.
var All = [...]Func{Sum, Mean, Count, Max, Min}

func (f Func) String() string {
	switch f {
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	case Count:
		return "count"
	case Max:
		return "max"
	case Min:
		return "min"
	}
	return "unknown"
}

// Parse selects a reduction by its exact name.
func Parse(name string) (Func, error) {
	for _, f := range All {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, &UnknownFunctionError{Input: name}
}

// Names returns the names of all reductions.
func Names() []string {
	names := make([]string, 0, len(All))
	for _, f := range All {
		names = append(names, f.String())
	}
	return names
}

// Apply reduces a non-empty bag of observations.
// The result for an empty bag is meaningless; callers render it blank.
func (f Func) Apply(bag []float64) float64 {
	if len(bag) == 0 {
		return math.NaN()
	}

	switch f {
	case Sum:
		return sum(bag)
	case Mean:
		return sum(bag) / float64(len(bag))
	case Count:
		return float64(len(bag))
	case Max:
		m := bag[0]
		for _, v := range bag[1:] {
			if v > m {
				m = v
			}
		}
		return m
	case Min:
		m := bag[0]
		for _, v := range bag[1:] {
			if v < m {
				m = v
			}
		}
		return m
	}
	return math.NaN()
}

func sum(bag []float64) float64 {
	var total float64
	for _, v := range bag {
		total += v
	}
	return total
}

// FormatValue renders an aggregate with exactly two decimal places,
// rounding half away from zero. Non-finite values fall back to strconv.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
