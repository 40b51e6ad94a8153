package indicator

import "math"

// CalculateEMA returns the exponential moving average with smoothing factor
// alpha = 2/(period+1), in its recursive (unadjusted) form:
//
//	EMA[0] = prices[0]
//	EMA[i] = alpha*prices[i] + (1-alpha)*EMA[i-1]
//
// A NaN price yields NaN at that position and the recurrence resumes from the
// last defined value. Leading NaNs are skipped; the first defined price seeds
// the average.
func CalculateEMA(prices []float64, period int) ([]float64, error) {
	if err := checkPeriod("ema", period); err != nil {
		return nil, err
	}

	alpha := 2.0 / (float64(period) + 1)
	out := make([]float64, len(prices))
	prev := math.NaN()
	for i, p := range prices {
		switch {
		case math.IsNaN(p):
			out[i] = math.NaN()
			continue
		case math.IsNaN(prev):
			prev = p
		default:
			prev = alpha*p + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out, nil
}
