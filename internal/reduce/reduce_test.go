package reduce

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, f := range All {
		got, err := Parse(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
}

func TestParse_Unknown(t *testing.T) {
	for _, input := range []string{"", "avg", "SUM", "median"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)

			var ufe *UnknownFunctionError
			require.True(t, errors.As(err, &ufe))
			assert.Equal(t, input, ufe.Input)
			assert.ErrorIs(t, err, ErrUnknownFunction)
			assert.Contains(t, err.Error(), "sum, mean, count, max, min")
		})
	}
}

func TestApply(t *testing.T) {
	bag := []float64{4, -1.5, 10, 2.5}

	tests := []struct {
		fn   Func
		want float64
	}{
		{fn: Sum, want: 15},
		{fn: Mean, want: 3.75},
		{fn: Count, want: 4},
		{fn: Max, want: 10},
		{fn: Min, want: -1.5},
	}

	for _, tc := range tests {
		t.Run(tc.fn.String(), func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.fn.Apply(bag), 1e-12)
		})
	}
}

func TestApply_SingleObservation(t *testing.T) {
	bag := []float64{-7.25}

	assert.Equal(t, -7.25, Sum.Apply(bag))
	assert.Equal(t, -7.25, Mean.Apply(bag))
	assert.Equal(t, -7.25, Max.Apply(bag))
	assert.Equal(t, -7.25, Min.Apply(bag))
	assert.Equal(t, 1.0, Count.Apply(bag))
}

func TestApply_EmptyBag(t *testing.T) {
	for _, f := range All {
		assert.True(t, math.IsNaN(f.Apply(nil)), f.String())
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 4, want: "4.00"},
		{in: 0, want: "0.00"},
		{in: -3.5, want: "-3.50"},
		{in: 1.005, want: "1.01"},
		{in: 2.675, want: "2.68"},
		{in: 1234567.891, want: "1234567.89"},
		{in: 0.1 + 0.2, want: "0.30"},
		{in: math.Inf(1), want: "+Inf"},
		{in: math.NaN(), want: "NaN"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatValue(tc.in))
		})
	}
}
