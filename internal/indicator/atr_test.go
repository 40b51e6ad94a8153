package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateATR(t *testing.T) {
	tests := []struct {
		name     string
		highs    []float64
		lows     []float64
		closes   []float64
		period   int
		expected []float64
	}{
		{
			name:     "Constant range",
			highs:    []float64{10, 11, 12, 11, 12, 13},
			lows:     []float64{8, 9, 10, 9, 10, 11},
			closes:   []float64{9, 10, 11, 10, 11, 12},
			period:   3,
			expected: []float64{nan, nan, nan, 2, 2, 2},
		},
		{
			name:     "Gap widens true range",
			highs:    []float64{10, 11, 20, 21},
			lows:     []float64{9, 10, 19, 20},
			closes:   []float64{10, 11, 20, 21},
			period:   2,
			// TR: -, 1, 9, 1 -> first ATR (1+9)/2, then (5*1+1)/2
			expected: []float64{nan, nan, 5, 3},
		},
		{
			name:     "NaN row restarts warm-up",
			highs:    []float64{10, 11, nan, 12, 13, 14},
			lows:     []float64{8, 9, nan, 10, 11, 12},
			closes:   []float64{9, 10, nan, 11, 12, 13},
			period:   2,
			expected: []float64{nan, nan, nan, nan, nan, 2},
		},
		{
			name:     "Period one is true range",
			highs:    []float64{10, 12, 11},
			lows:     []float64{9, 10, 10},
			closes:   []float64{10, 11, 10},
			period:   1,
			expected: []float64{nan, 2, 1},
		},
		{
			name:     "Insufficient data",
			highs:    []float64{10, 11},
			lows:     []float64{9, 10},
			closes:   []float64{10, 11},
			period:   3,
			expected: []float64{nan, nan},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculateATR(tt.highs, tt.lows, tt.closes, tt.period)
			require.NoError(t, err)
			assertSeries(t, tt.expected, result, 1e-9)
		})
	}
}

func TestTrueRange(t *testing.T) {
	assert.Equal(t, 2.0, trueRange(10, 8, 9))
	assert.Equal(t, 5.0, trueRange(10, 8, 5))
	assert.Equal(t, 4.0, trueRange(10, 8, 12))
}

func TestATRValidation(t *testing.T) {
	_, err := CalculateATR([]float64{1}, []float64{1}, []float64{1}, 0)
	assert.True(t, IsValidation(err))

	_, err = CalculateATR([]float64{1, 2}, []float64{1}, []float64{1, 2}, 2)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
