package candle

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/simple-indicators/internal/frame"
	"github.com/amirphl/simple-indicators/internal/tfutils"
)

// MemorySource keeps candles in memory. It is safe for concurrent use.
type MemorySource struct {
	mu sync.RWMutex

	// Candles keyed by symbol|timeframe|timestamp
	candles map[string]Candle
}

func NewMemorySource() *MemorySource {
	return &MemorySource{candles: make(map[string]Candle)}
}

func candleKey(symbol, timeframe string, ts time.Time) string {
	return strings.ToUpper(symbol) + "|" + timeframe + "|" + ts.UTC().Format(time.RFC3339Nano)
}

// SaveCandles validates and stores candles, replacing any candle with the
// same symbol, timeframe and timestamp.
func (m *MemorySource) SaveCandles(candles ...Candle) error {
	for i := range candles {
		if err := candles[i].Validate(); err != nil {
			return fmt.Errorf("invalid candle at index %d: %w", i, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range candles {
		c.Timestamp = c.Timestamp.UTC()
		m.candles[candleKey(c.Symbol, c.Timeframe, c.Timestamp)] = c
	}
	return nil
}

// GetCandles returns the stored candles of one timeframe in [start, end),
// oldest first. Symbols match case-insensitively.
func (m *MemorySource) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Candle
	for _, c := range m.candles {
		if !strings.EqualFold(c.Symbol, symbol) || c.Timeframe != timeframe {
			continue
		}
		if c.Timestamp.Before(start) || !c.Timestamp.Before(end) {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Candle) int { return a.Timestamp.Compare(b.Timestamp) })
	return out, nil
}

// GetData implements Source.
func (m *MemorySource) GetData(ctx context.Context, symbol string, start, end time.Time, interval string) (*frame.Table, error) {
	candles, err := Load(ctx, m.GetCandles, symbol, start, end, interval)
	if err != nil {
		return nil, err
	}
	return ToTable(candles)
}

// RandomWalk generates n consecutive candles starting at start whose close
// follows a small random walk from price. The same seed always yields the
// same candles.
func RandomWalk(symbol, timeframe string, start time.Time, n int, price float64, seed int64) ([]Candle, error) {
	dur, err := tfutils.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	if !(price > 0) {
		return nil, fmt.Errorf("start price must be positive, got %v", price)
	}
	if n < 0 {
		return nil, fmt.Errorf("candle count cannot be negative, got %d", n)
	}

	rng := rand.New(rand.NewSource(seed))
	ts := start.UTC().Truncate(dur)
	candles := make([]Candle, n)
	for i := range candles {
		open := price
		// Change up to ±1% each candle
		price = math.Max(open*(1+(rng.Float64()*2-1)/100), 0.01)
		wick := open * rng.Float64() / 200
		candles[i] = Candle{
			Timestamp: ts,
			Open:      open,
			High:      math.Max(open, price) + wick,
			Low:       math.Max(math.Min(open, price)-wick, 0.005),
			Close:     price,
			Volume:    float64(rng.Intn(1000) + 1),
			Symbol:    symbol,
			Timeframe: timeframe,
			Source:    "memory",
		}
		ts = ts.Add(dur)
	}
	return candles, nil
}
