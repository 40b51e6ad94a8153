package indicator

import "math"

// StochasticResult holds the results of stochastic oscillator calculation
type StochasticResult struct {
	K []float64 // %K line values
	D []float64 // %D line values
}

// DefaultStochasticSettings returns the default parameters matching Pine Script defaults
func DefaultStochasticSettings() (periodK, smoothK, periodD int) {
	return 14, 1, 3 // %K Length=14, %K Smoothing=1, %D Smoothing=3
}

// CalculateStochastic calculates the Stochastic Oscillator (%K and %D).
// This implementation matches Pine Script's ta.stoch() function behavior:
// k = ta.sma(ta.stoch(close, high, low, periodK), smoothK)
// d = ta.sma(k, periodD)
//
// Parameters:
// - highs, lows, closes: aligned price series
// - periodK: The lookback period for %K calculation (%K Length, default 14)
// - smoothK: The smoothing period for %K line (%K Smoothing, default 1)
// - periodD: The smoothing period for %D line (%D Smoothing, default 3)
//
// The raw value is 50 when the lookback window has no range.
func CalculateStochastic(highs, lows, closes []float64, periodK, smoothK, periodD int) (*StochasticResult, error) {
	if err := checkPeriod("stoch %K", periodK); err != nil {
		return nil, err
	}
	if err := checkPeriod("stoch smoothing", smoothK); err != nil {
		return nil, err
	}
	if err := checkPeriod("stoch %D", periodD); err != nil {
		return nil, err
	}
	if err := checkSameLength("stoch", highs, lows, closes); err != nil {
		return nil, err
	}
	for i := range highs {
		if highs[i] < lows[i] {
			return nil, Validationf("stoch: high %v is below low %v at row %d", highs[i], lows[i], i)
		}
	}

	// Step 1: raw stochastic over rolling highest high / lowest low
	raw := make([]float64, len(closes))
	hh := newRollingMax(periodK)
	ll := newRollingMin(periodK)
	for i := range closes {
		hh.push(highs[i])
		ll.push(lows[i])
		if !hh.full() || !ll.full() || math.IsNaN(closes[i]) {
			raw[i] = math.NaN()
			continue
		}
		highest, lowest := hh.value(), ll.value()
		if highest == lowest {
			raw[i] = 50.0 // Default to middle value when there's no range
		} else {
			raw[i] = 100.0 * (closes[i] - lowest) / (highest - lowest)
		}
	}

	// Step 2: %K is the smoothK SMA of the raw values
	k, err := CalculateSMA(raw, smoothK)
	if err != nil {
		return nil, err
	}

	// Step 3: %D is the periodD SMA of %K
	d, err := CalculateSMA(k, periodD)
	if err != nil {
		return nil, err
	}

	return &StochasticResult{K: k, D: d}, nil
}
