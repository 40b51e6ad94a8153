package indicator

import "math"

// CalculateSMA returns the simple moving average of prices over a trailing
// window of period values, inclusive of the current one.
//
// Output position i is NaN for i < period-1, and for any window that
// contains a NaN input.
func CalculateSMA(prices []float64, period int) ([]float64, error) {
	if err := checkPeriod("sma", period); err != nil {
		return nil, err
	}
	if period > len(prices) {
		return nanSeries(len(prices)), nil
	}

	out := make([]float64, len(prices))
	w := newRollingSum(period)
	for i, p := range prices {
		w.push(p)
		if w.full() {
			out[i] = w.mean()
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}
