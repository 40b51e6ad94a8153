package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// trueRange calculates the True Range of row i given the previous close.
func trueRange(high, low, prevClose float64) float64 {
	highLow := high - low
	highClose := math.Abs(high - prevClose)
	lowClose := math.Abs(low - prevClose)
	return math.Max(highLow, math.Max(highClose, lowClose))
}

// CalculateATR returns the Average True Range with Wilder smoothing.
//
// True range needs a previous close, so it starts at row 1. The first ATR,
// at row period, is the simple mean of the first period true ranges; later
// values use ATR[i] = (ATR[i-1]*(period-1) + TR[i]) / period.
// A row with a NaN input restarts the warm-up on the following row.
func CalculateATR(highs, lows, closes []float64, period int) ([]float64, error) {
	if err := checkPeriod("atr", period); err != nil {
		return nil, err
	}
	if err := checkSameLength("atr", highs, lows, closes); err != nil {
		return nil, err
	}

	out := nanSeries(len(closes))
	forEachDefinedRun(len(closes), func(i int) bool {
		return !math.IsNaN(highs[i]) && !math.IsNaN(lows[i]) && !math.IsNaN(closes[i])
	}, func(start, end int) {
		// talib indexes the seed at row period of the run.
		if end-start <= period {
			return
		}
		atr := talib.Atr(highs[start:end], lows[start:end], closes[start:end], period)
		copy(out[start+period:end], atr[period:])
	})
	return out, nil
}

// forEachDefinedRun calls fn with the bounds [start, end) of every maximal run
// of rows for which defined reports true.
func forEachDefinedRun(n int, defined func(i int) bool, fn func(start, end int)) {
	start := -1
	for i := 0; i <= n; i++ {
		if i < n && defined(i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			fn(start, i)
			start = -1
		}
	}
}
