package indicator

import "math"

// HeikinAshiResult holds the smoothed candle series.
type HeikinAshiResult struct {
	Open  []float64
	High  []float64
	Low   []float64
	Close []float64
}

// CalculateHeikinAshi transforms OHLC series into Heikin Ashi candles.
//
//	HA close = (open+high+low+close)/4
//	HA open  = (prev HA open + prev HA close)/2, or (open+close)/2 on the first row
//	HA high  = max(high, HA open, HA close)
//	HA low   = min(low, HA open, HA close)
//
// A row with a NaN input is NaN and the next defined row seeds again.
func CalculateHeikinAshi(opens, highs, lows, closes []float64) (*HeikinAshiResult, error) {
	if err := checkSameLength("ha", opens, highs, lows, closes); err != nil {
		return nil, err
	}

	n := len(closes)
	res := &HeikinAshiResult{
		Open:  make([]float64, n),
		High:  make([]float64, n),
		Low:   make([]float64, n),
		Close: make([]float64, n),
	}

	seeded := false
	var prevOpen, prevClose float64
	for i := 0; i < n; i++ {
		o, h, l, c := opens[i], highs[i], lows[i], closes[i]
		if math.IsNaN(o) || math.IsNaN(h) || math.IsNaN(l) || math.IsNaN(c) {
			res.Open[i], res.High[i], res.Low[i], res.Close[i] = math.NaN(), math.NaN(), math.NaN(), math.NaN()
			seeded = false
			continue
		}

		haClose := (o + h + l + c) / 4
		haOpen := (o + c) / 2
		if seeded {
			haOpen = (prevOpen + prevClose) / 2
		}
		res.Open[i] = haOpen
		res.Close[i] = haClose
		res.High[i] = math.Max(h, math.Max(haOpen, haClose))
		res.Low[i] = math.Min(l, math.Min(haOpen, haClose))

		prevOpen, prevClose = haOpen, haClose
		seeded = true
	}
	return res, nil
}
