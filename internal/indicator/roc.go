package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateROC returns the percentage rate of change over period rows:
// 100*(p[i]-p[i-period])/p[i-period]. Undefined (NaN) for i < period and
// when the base price is zero or missing.
func CalculateROC(prices []float64, period int) ([]float64, error) {
	if err := checkPeriod("roc", period); err != nil {
		return nil, err
	}

	out := nanSeries(len(prices))
	if period >= len(prices) {
		return out, nil
	}
	roc := talib.Roc(prices, period)
	for i := period; i < len(prices); i++ {
		// talib reports 0 for a zero base.
		if base := prices[i-period]; base == 0 || math.IsNaN(base) || math.IsNaN(prices[i]) {
			continue
		}
		out[i] = roc[i]
	}
	return out, nil
}
