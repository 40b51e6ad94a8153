package indicator

import "math"

// RSI bounds.
const (
	RSIMax = 100.0
	RSIMin = 0.0
)

// CalculateRSI returns the Relative Strength Index of prices.
//
// Average gain and loss are simple rolling means over period price changes.
// The change into the first price counts as zero, so the first defined value
// is at index period-1. When the window has gains but no losses the RSI is
// exactly 100. A window with neither has no defined RSI and is NaN.
func CalculateRSI(prices []float64, period int) ([]float64, error) {
	if err := checkPeriod("rsi", period); err != nil {
		return nil, err
	}
	if period > len(prices) {
		return nanSeries(len(prices)), nil
	}

	out := make([]float64, len(prices))
	gains := newRollingSum(period)
	losses := newRollingSum(period)

	for i := range prices {
		var change float64
		if i > 0 {
			change = prices[i] - prices[i-1]
		}
		if math.IsNaN(prices[i]) {
			change = math.NaN()
		}

		gain, loss := change, change // NaN propagates into both windows
		if !math.IsNaN(change) {
			gain, loss = math.Max(change, 0), math.Max(-change, 0)
		}
		gains.push(gain)
		losses.push(loss)

		if !gains.full() {
			out[i] = math.NaN()
			continue
		}
		out[i] = rsiValue(gains.mean(), losses.mean())
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return math.NaN()
		}
		return RSIMax
	}
	rs := avgGain / avgLoss
	v := 100 - (100 / (1 + rs))
	return math.Min(RSIMax, math.Max(RSIMin, v))
}
