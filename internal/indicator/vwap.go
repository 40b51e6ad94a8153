package indicator

import "math"

// CalculateVWAP returns the cumulative volume weighted average price using the
// typical price (high+low+close)/3.
//
// Rows with any NaN input are NaN and do not contribute. Positions before any
// volume has traded are NaN. Negative volume is rejected.
func CalculateVWAP(highs, lows, closes, volumes []float64) ([]float64, error) {
	if err := checkSameLength("vwap", highs, lows, closes, volumes); err != nil {
		return nil, err
	}
	for i, v := range volumes {
		if v < 0 {
			return nil, Validationf("vwap: volume cannot be negative, got %v at row %d", v, i)
		}
	}

	out := make([]float64, len(closes))
	var cumPV, cumVol float64
	for i := range closes {
		h, l, c, v := highs[i], lows[i], closes[i], volumes[i]
		if math.IsNaN(h) || math.IsNaN(l) || math.IsNaN(c) || math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		cumPV += (h + l + c) / 3 * v
		cumVol += v
		if cumVol == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = cumPV / cumVol
	}
	return out, nil
}
