package indicator

import "math"

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// DefaultMACDSettings returns the conventional fast, slow and signal periods.
func DefaultMACDSettings() (fast, slow, signal int) {
	return 12, 26, 9
}

// CalculateMACD returns EMA(fast) - EMA(slow), the EMA(signal) of that line and
// their difference. All three use the recursive EMA, so values are defined
// from the first price onwards. fast must be shorter than slow.
func CalculateMACD(prices []float64, fast, slow, signal int) (*MACDResult, error) {
	for _, p := range []struct {
		name string
		v    int
	}{{"fast", fast}, {"slow", slow}, {"signal", signal}} {
		if err := checkPeriod("macd "+p.name, p.v); err != nil {
			return nil, err
		}
	}
	if fast >= slow {
		return nil, Validationf("macd: fast period (%d) must be less than slow period (%d)", fast, slow)
	}

	fastEMA, err := CalculateEMA(prices, fast)
	if err != nil {
		return nil, err
	}
	slowEMA, err := CalculateEMA(prices, slow)
	if err != nil {
		return nil, err
	}

	line := make([]float64, len(prices))
	for i := range line {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig, err := CalculateEMA(line, signal)
	if err != nil {
		return nil, err
	}

	hist := make([]float64, len(prices))
	for i := range hist {
		if math.IsNaN(line[i]) || math.IsNaN(sig[i]) {
			hist[i] = math.NaN()
			continue
		}
		hist[i] = line[i] - sig[i]
	}

	return &MACDResult{MACD: line, Signal: sig, Histogram: hist}, nil
}
