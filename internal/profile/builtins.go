package profile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amirphl/simple-indicators/internal/frame"
	"github.com/amirphl/simple-indicators/internal/indicator"
)

// builtins lists the built-in indicators. Order matters: it is the column
// order of the "all" profile.
func builtins() []Definition {
	macdFast, macdSlow, macdSignal := indicator.DefaultMACDSettings()
	stochK, stochSmooth, stochD := indicator.DefaultStochasticSettings()

	return []Definition{
		{
			Name:        "sma",
			Description: "Simple moving average of close",
			Params:      []Param{{Name: "period", Default: 20}},
			Inputs:      []string{frame.ColClose},
			Compute:     single(indicator.CalculateSMA),
			Outputs:     named("SMA"),
		},
		{
			Name:        "ema",
			Description: "Exponential moving average of close",
			Params:      []Param{{Name: "period", Default: 20}},
			Inputs:      []string{frame.ColClose},
			Compute:     single(indicator.CalculateEMA),
			Outputs:     named("EMA"),
		},
		{
			Name:        "rsi",
			Description: "Relative strength index of close",
			Params:      []Param{{Name: "period", Default: 14}},
			Inputs:      []string{frame.ColClose},
			Compute:     single(indicator.CalculateRSI),
			Outputs:     named("RSI"),
		},
		{
			Name:        "bb",
			Description: "Bollinger bands of close at 2 standard deviations",
			Params:      []Param{{Name: "period", Default: 20}},
			Inputs:      []string{frame.ColClose},
			Compute: func(in [][]float64, p []int) ([][]float64, error) {
				res, err := indicator.CalculateBollingerBands(in[0], p[0], indicator.DefaultBollingerK)
				if err != nil {
					return nil, err
				}
				return [][]float64{res.Upper, res.Middle, res.Lower}, nil
			},
			Outputs: named("BB_UPPER", "BB_MIDDLE", "BB_LOWER"),
		},
		{
			Name:        "vwap",
			Description: "Cumulative volume weighted average price",
			Inputs:      []string{frame.ColHigh, frame.ColLow, frame.ColClose, frame.ColVolume},
			Compute: func(in [][]float64, _ []int) ([][]float64, error) {
				out, err := indicator.CalculateVWAP(in[0], in[1], in[2], in[3])
				if err != nil {
					return nil, err
				}
				return [][]float64{out}, nil
			},
			Outputs: named("VWAP"),
		},
		{
			Name:        "macd",
			Description: "Moving average convergence divergence of close",
			Params: []Param{
				{Name: "fast", Default: macdFast},
				{Name: "slow", Default: macdSlow},
				{Name: "signal", Default: macdSignal},
			},
			Inputs: []string{frame.ColClose},
			Compute: func(in [][]float64, p []int) ([][]float64, error) {
				res, err := indicator.CalculateMACD(in[0], p[0], p[1], p[2])
				if err != nil {
					return nil, err
				}
				return [][]float64{res.MACD, res.Signal, res.Histogram}, nil
			},
			Outputs: named("MACD", "MACD_SIGNAL", "MACD_HIST"),
		},
		{
			Name:        "stoch",
			Description: "Stochastic oscillator %K and %D",
			Params: []Param{
				{Name: "k", Default: stochK},
				{Name: "smooth", Default: stochSmooth},
				{Name: "d", Default: stochD},
			},
			Inputs: []string{frame.ColHigh, frame.ColLow, frame.ColClose},
			Compute: func(in [][]float64, p []int) ([][]float64, error) {
				res, err := indicator.CalculateStochastic(in[0], in[1], in[2], p[0], p[1], p[2])
				if err != nil {
					return nil, err
				}
				return [][]float64{res.K, res.D}, nil
			},
			Outputs: named("STOCH_K", "STOCH_D"),
		},
		{
			Name:        "atr",
			Description: "Average true range (Wilder)",
			Params:      []Param{{Name: "period", Default: 14}},
			Inputs:      []string{frame.ColHigh, frame.ColLow, frame.ColClose},
			Compute: func(in [][]float64, p []int) ([][]float64, error) {
				out, err := indicator.CalculateATR(in[0], in[1], in[2], p[0])
				if err != nil {
					return nil, err
				}
				return [][]float64{out}, nil
			},
			Outputs: named("ATR"),
		},
		{
			Name:        "roc",
			Description: "Percentage rate of change of close",
			Params:      []Param{{Name: "period", Default: 10}},
			Inputs:      []string{frame.ColClose},
			Compute:     single(indicator.CalculateROC),
			Outputs:     named("ROC"),
		},
		{
			Name:        "ha",
			Description: "Heikin Ashi candles",
			Inputs:      []string{frame.ColOpen, frame.ColHigh, frame.ColLow, frame.ColClose},
			Compute: func(in [][]float64, _ []int) ([][]float64, error) {
				res, err := indicator.CalculateHeikinAshi(in[0], in[1], in[2], in[3])
				if err != nil {
					return nil, err
				}
				return [][]float64{res.Open, res.High, res.Low, res.Close}, nil
			},
			Outputs: named("HA_OPEN", "HA_HIGH", "HA_LOW", "HA_CLOSE"),
		},
	}
}

// single adapts a one-series, one-period indicator.
func single(fn func([]float64, int) ([]float64, error)) ComputeFunc {
	return func(in [][]float64, p []int) ([][]float64, error) {
		out, err := fn(in[0], p[0])
		if err != nil {
			return nil, err
		}
		return [][]float64{out}, nil
	}
}

// named builds column names as PREFIX_<p1>_<p2>..., or the bare prefix when
// the indicator takes no params.
func named(prefixes ...string) func([]int) []string {
	return func(params []int) []string {
		suffix := joinInts(params)
		out := make([]string, len(prefixes))
		for i, p := range prefixes {
			if suffix == "" {
				out[i] = p
			} else {
				out[i] = fmt.Sprintf("%s_%s", p, suffix)
			}
		}
		return out
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, tokenSeparator)
}
