package indicator

import "math"

// DefaultBollingerK is the usual band width in standard deviations.
const DefaultBollingerK = 2.0

// BollingerResult holds the three band series.
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// CalculateBollingerBands returns middle = SMA(period) and upper/lower bands at
// k sample standard deviations (n-1) of the same window.
// period must be at least 2 since a one-value window has no sample deviation.
func CalculateBollingerBands(prices []float64, period int, k float64) (*BollingerResult, error) {
	if err := checkPeriod("bb", period); err != nil {
		return nil, err
	}
	if period < 2 {
		return nil, Validationf("bb: %w for a sample deviation, need at least 2, got %d", ErrInvalidPeriod, period)
	}
	if !(k > 0) || math.IsInf(k, 0) {
		return nil, Validationf("bb: band multiplier must be a positive number, got %v", k)
	}

	n := len(prices)
	if period > n {
		return &BollingerResult{Upper: nanSeries(n), Middle: nanSeries(n), Lower: nanSeries(n)}, nil
	}
	res := &BollingerResult{
		Upper:  make([]float64, n),
		Middle: make([]float64, n),
		Lower:  make([]float64, n),
	}

	w := newRollingMoments(period)
	for i, p := range prices {
		w.push(p)
		if !w.full() {
			res.Upper[i], res.Middle[i], res.Lower[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		band := k * w.sampleStd()
		res.Middle[i] = w.mean
		res.Upper[i] = w.mean + band
		res.Lower[i] = w.mean - band
	}
	return res, nil
}
