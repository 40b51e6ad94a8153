package frame

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics of the defined values of one column.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
}

// Describe summarizes the named columns, or every column when none are given.
// NaN positions are skipped. Columns that do not exist are skipped too.
func (t *Table) Describe(names ...string) []Summary {
	if len(names) == 0 {
		names = t.names
	}

	out := make([]Summary, 0, len(names))
	for _, n := range names {
		v, ok := t.cols[n]
		if !ok {
			continue
		}
		defined := make([]float64, 0, len(v))
		for _, x := range v {
			if !math.IsNaN(x) {
				defined = append(defined, x)
			}
		}

		s := Summary{Column: n, Count: len(defined)}
		switch len(defined) {
		case 0:
			s.Mean, s.Std, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		case 1:
			s.Mean, s.Min, s.Max = defined[0], defined[0], defined[0]
			s.Std = math.NaN()
		default:
			s.Mean, s.Std = stat.MeanStdDev(defined, nil)
			s.Min = floats.Min(defined)
			s.Max = floats.Max(defined)
		}
		out = append(out, s)
	}
	return out
}
