// Package candle holds OHLCV candles and the sources that turn them into
// indicator-ready tables.
package candle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/amirphl/simple-indicators/internal/frame"
	"github.com/amirphl/simple-indicators/internal/tfutils"
)

type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Source    string    `json:"source"`
}

// Validate checks if a candle has valid data
func (c *Candle) Validate() error {
	if c.Timestamp.IsZero() {
		return errors.New("candle timestamp is zero")
	}
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("candle values must be finite")
		}
	}
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return errors.New("candle prices must be positive")
	}
	if c.High < c.Low {
		return errors.New("candle high cannot be less than low")
	}
	if c.Open < c.Low || c.Open > c.High {
		return errors.New("candle open price must be between high and low")
	}
	if c.Close < c.Low || c.Close > c.High {
		return errors.New("candle close price must be between high and low")
	}
	if c.Volume < 0 {
		return errors.New("candle volume cannot be negative")
	}
	if c.Symbol == "" {
		return errors.New("candle symbol cannot be empty")
	}
	if c.Timeframe == "" {
		return errors.New("candle timeframe cannot be empty")
	}
	return nil
}

// Source produces the OHLCV table for a symbol over [start, end) at the
// given interval.
type Source interface {
	GetData(ctx context.Context, symbol string, start, end time.Time, interval string) (*frame.Table, error)
}

// ToTable converts candles into a table with open, high, low, close and
// volume columns indexed by timestamp. Candles are sorted first; two candles
// with the same timestamp are an error.
func ToTable(candles []Candle) (*frame.Table, error) {
	sorted := slices.Clone(candles)
	slices.SortStableFunc(sorted, func(a, b Candle) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	n := len(sorted)
	index := make([]time.Time, n)
	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range sorted {
		index[i] = c.Timestamp.UTC()
		opens[i] = c.Open
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	t, err := frame.New(index)
	if err != nil {
		return nil, fmt.Errorf("duplicate candle timestamps: %w", err)
	}
	for _, col := range []struct {
		name   string
		values []float64
	}{
		{frame.ColOpen, opens},
		{frame.ColHigh, highs},
		{frame.ColLow, lows},
		{frame.ColClose, closes},
		{frame.ColVolume, volumes},
	} {
		if err := t.Set(col.name, col.values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Aggregate builds candles of a higher timeframe from candles of one lower
// timeframe and one symbol. Buckets are labelled by their start time. Gaps in
// the input are allowed and produce no bucket.
func Aggregate(candles []Candle, timeframe string) ([]Candle, error) {
	if len(candles) == 0 {
		return nil, nil
	}

	dur, err := tfutils.ParseTimeframe(timeframe)
	if err != nil {
		return nil, fmt.Errorf("invalid timeframe %s: %w", timeframe, err)
	}

	sorted := slices.Clone(candles)
	slices.SortStableFunc(sorted, func(a, b Candle) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	first := sorted[0]
	firstDur, err := tfutils.ParseTimeframe(first.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("invalid timeframe %s: %w", first.Timeframe, err)
	}
	if firstDur >= dur {
		return nil, fmt.Errorf("source timeframe %s must be smaller than target timeframe %s", first.Timeframe, timeframe)
	}

	var result []Candle
	for i, c := range sorted {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid candle at index %d: %w", i, err)
		}
		if c.Symbol != first.Symbol {
			return nil, fmt.Errorf("candle at index %d has different symbol: %s, expected: %s", i, c.Symbol, first.Symbol)
		}
		if c.Timeframe != first.Timeframe {
			return nil, fmt.Errorf("candle at index %d has different timeframe: %s, expected: %s", i, c.Timeframe, first.Timeframe)
		}

		bucket := c.Timestamp.UTC().Truncate(dur)
		if n := len(result); n > 0 && result[n-1].Timestamp.Equal(bucket) {
			agg := &result[n-1]
			agg.High = max(agg.High, c.High)
			agg.Low = min(agg.Low, c.Low)
			agg.Close = c.Close
			agg.Volume += c.Volume
			continue
		}
		result = append(result, Candle{
			Timestamp: bucket,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
			Symbol:    c.Symbol,
			Timeframe: timeframe,
			Source:    "constructed",
		})
	}
	return result, nil
}

// Resample returns candles at interval, aggregating when the candles are of
// a lower timeframe. Candles already at interval are returned unchanged.
func Resample(candles []Candle, interval string) ([]Candle, error) {
	if len(candles) == 0 || candles[0].Timeframe == interval {
		return candles, nil
	}
	return Aggregate(candles, interval)
}

// FetchFunc loads stored candles of one timeframe in [start, end).
type FetchFunc func(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]Candle, error)

// Load returns candles at interval. When nothing is stored at interval it
// falls back to the base 1m candles and aggregates them.
func Load(ctx context.Context, fetch FetchFunc, symbol string, start, end time.Time, interval string) ([]Candle, error) {
	if !tfutils.IsValidTimeframe(interval) {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s must be before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	candles, err := fetch(ctx, symbol, interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s candles: %w", interval, err)
	}
	if len(candles) > 0 || interval == tfutils.BaseTimeframe {
		return candles, nil
	}

	oneMin, err := fetch(ctx, symbol, tfutils.BaseTimeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s candles: %w", tfutils.BaseTimeframe, err)
	}
	return Aggregate(oneMin, interval)
}
