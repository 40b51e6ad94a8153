package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateVWAP(t *testing.T) {
	tests := []struct {
		name     string
		highs    []float64
		lows     []float64
		closes   []float64
		volumes  []float64
		expected []float64
	}{
		{
			name:     "Cumulative typical price",
			highs:    []float64{12, 13, 14},
			lows:     []float64{8, 9, 10},
			closes:   []float64{10, 11, 12},
			volumes:  []float64{100, 200, 0},
			expected: []float64{10, 10.6667, 10.6667},
		},
		{
			name:     "No volume yet",
			highs:    []float64{12, 13},
			lows:     []float64{8, 9},
			closes:   []float64{10, 11},
			volumes:  []float64{0, 50},
			expected: []float64{nan, 11},
		},
		{
			name:     "NaN row is skipped",
			highs:    []float64{12, nan, 14},
			lows:     []float64{8, 9, 10},
			closes:   []float64{10, 11, 12},
			volumes:  []float64{100, 200, 100},
			expected: []float64{10, nan, 11},
		},
		{
			name:     "Empty series",
			highs:    []float64{},
			lows:     []float64{},
			closes:   []float64{},
			volumes:  []float64{},
			expected: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculateVWAP(tt.highs, tt.lows, tt.closes, tt.volumes)
			require.NoError(t, err)
			assertSeries(t, tt.expected, result, 1e-4)
		})
	}
}

func TestVWAPValidation(t *testing.T) {
	t.Run("Negative volume", func(t *testing.T) {
		result, err := CalculateVWAP([]float64{2}, []float64{1}, []float64{1.5}, []float64{-1})
		assert.Nil(t, result)
		assert.True(t, IsValidation(err))
	})

	t.Run("Length mismatch", func(t *testing.T) {
		result, err := CalculateVWAP([]float64{2, 3}, []float64{1}, []float64{1.5, 2}, []float64{1, 1})
		assert.Nil(t, result)
		assert.True(t, IsValidation(err))
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})
}
