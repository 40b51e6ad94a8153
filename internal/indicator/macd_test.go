package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMACD(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	result, err := CalculateMACD(prices, 2, 4, 3)
	require.NoError(t, err)

	assertSeries(t, []float64{0, 0.26667, 0.51556, 0.69452, 0.81177, 0.88542, 0.93070, 0.95824}, result.MACD, 1e-4)
	assertSeries(t, []float64{0, 0.13333, 0.32444, 0.50948, 0.66063, 0.77302, 0.85186, 0.90505}, result.Signal, 1e-4)
	assertSeries(t, []float64{0, 0.13333, 0.19111, 0.18504, 0.15115, 0.11240, 0.07884, 0.05319}, result.Histogram, 1e-4)
}

func TestMACDIsDifferenceOfEMAs(t *testing.T) {
	prices := []float64{44, 44.34, 44.09, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08, 45.89, 46.03}
	fast, slow, signal := DefaultMACDSettings()

	result, err := CalculateMACD(prices, fast, slow, signal)
	require.NoError(t, err)

	fastEMA, err := CalculateEMA(prices, fast)
	require.NoError(t, err)
	slowEMA, err := CalculateEMA(prices, slow)
	require.NoError(t, err)

	for i := range prices {
		assert.InDelta(t, fastEMA[i]-slowEMA[i], result.MACD[i], 1e-12)
		assert.InDelta(t, result.MACD[i]-result.Signal[i], result.Histogram[i], 1e-12)
	}
}

func TestDefaultMACDSettings(t *testing.T) {
	fast, slow, signal := DefaultMACDSettings()
	assert.Equal(t, 12, fast)
	assert.Equal(t, 26, slow)
	assert.Equal(t, 9, signal)
}

func TestMACDValidation(t *testing.T) {
	prices := []float64{1, 2, 3, 4}

	tests := []struct {
		name               string
		fast, slow, signal int
	}{
		{"Zero fast", 0, 4, 3},
		{"Zero slow", 2, 0, 3},
		{"Zero signal", 2, 4, 0},
		{"Fast equals slow", 4, 4, 3},
		{"Fast above slow", 5, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculateMACD(prices, tt.fast, tt.slow, tt.signal)
			assert.Nil(t, result)
			assert.True(t, IsValidation(err))
		})
	}
}
