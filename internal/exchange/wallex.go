// Package exchange fetches market candles from the Wallex REST API.
package exchange

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	wallex "github.com/wallexchange/wallex-go"
	"golang.org/x/time/rate"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/frame"
	"github.com/amirphl/simple-indicators/internal/tfutils"
	"github.com/amirphl/simple-indicators/internal/utils"
)

const (
	defaultRequestsPerSecond = 2
	defaultMaxRetries        = 3
)

// Resolutions served natively by the Wallex candles endpoint. Other
// timeframes are built from 1m candles.
var resolutions = map[string]string{
	"1m": "1",
	"1h": "60",
	"1d": "1D",
}

type candleClient interface {
	Candles(symbol, resolution string, from, to time.Time) ([]*wallex.Candle, error)
}

// Options configures a Wallex source.
type Options struct {
	APIKey string

	// RequestsPerSecond caps outgoing requests. Zero means the default, a
	// negative value disables the limit.
	RequestsPerSecond float64
	MaxRetries        uint64
}

// Wallex is a candle.Source backed by the Wallex public API.
type Wallex struct {
	client     candleClient
	limiter    *rate.Limiter
	maxRetries uint64
	newBackOff func() backoff.BackOff
	log        *logrus.Entry
}

func NewWallex(opts Options) *Wallex {
	return newWallex(wallex.New(wallex.ClientOptions{APIKey: opts.APIKey}), opts)
}

func newWallex(client candleClient, opts Options) *Wallex {
	rps := opts.RequestsPerSecond
	if rps == 0 {
		rps = defaultRequestsPerSecond
	}
	limit := rate.Limit(rps)
	if rps < 0 {
		limit = rate.Inf
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	return &Wallex{
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 2 * time.Second
			b.MaxInterval = 5 * time.Minute
			return b
		},
		log: utils.GetLogger().WithField("source", "wallex"),
	}
}

func (w *Wallex) Name() string {
	return "wallex"
}

// NormalizeSymbol converts "btc-usdt" style symbols to the exchange form "BTCUSDT".
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}

// Resolution returns the API resolution for timeframe and whether the API
// serves it directly.
func Resolution(timeframe string) (string, bool) {
	r, ok := resolutions[timeframe]
	return r, ok
}

// FetchCandles fetches candles of timeframe in [start, end). Timeframes the
// API does not serve yield no candles. Malformed rows are skipped.
func (w *Wallex) FetchCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]candle.Candle, error) {
	if !tfutils.IsValidTimeframe(timeframe) {
		return nil, fmt.Errorf("unsupported timeframe: %s", timeframe)
	}
	resolution, ok := Resolution(timeframe)
	if !ok {
		return nil, nil
	}

	normalizedSymbol := NormalizeSymbol(symbol)
	var raw []*wallex.Candle
	attempt := 0
	op := func() error {
		attempt++
		if err := w.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		var err error
		raw, err = w.client.Candles(normalizedSymbol, resolution, start, end)
		if err != nil {
			w.log.WithError(err).Warnf("candles %s %s attempt %d failed", normalizedSymbol, timeframe, attempt)
			return fmt.Errorf("fetching candles: %w", err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), w.maxRetries-1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("FetchCandles failed after %d attempts: %w", attempt, err)
	}

	candles := make([]candle.Candle, 0, len(raw))
	for _, wc := range raw {
		if wc == nil {
			continue
		}
		c, err := toCandle(wc, symbol, timeframe)
		if err != nil {
			w.log.WithError(err).Debug("skipping malformed candle")
			continue
		}
		ts := c.Timestamp
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		if err := c.Validate(); err != nil {
			w.log.WithError(err).Debug("skipping invalid candle")
			continue
		}
		candles = append(candles, c)
	}

	slices.SortFunc(candles, func(a, b candle.Candle) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	candles = slices.CompactFunc(candles, func(a, b candle.Candle) bool {
		return a.Timestamp.Equal(b.Timestamp)
	})

	w.log.Debugf("fetched %d %s candles for %s", len(candles), timeframe, symbol)
	return candles, nil
}

// GetData implements candle.Source.
func (w *Wallex) GetData(ctx context.Context, symbol string, start, end time.Time, interval string) (*frame.Table, error) {
	candles, err := candle.Load(ctx, w.FetchCandles, symbol, start, end, interval)
	if err != nil {
		return nil, err
	}
	return candle.ToTable(candles)
}

func toCandle(wc *wallex.Candle, symbol, timeframe string) (candle.Candle, error) {
	var values [5]float64
	for i, n := range []wallex.Number{wc.Open, wc.High, wc.Low, wc.Close, wc.Volume} {
		v, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return candle.Candle{}, fmt.Errorf("parse %q: %w", n, err)
		}
		values[i] = v
	}

	return candle.Candle{
		Timestamp: wc.Timestamp.UTC().Truncate(time.Minute),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
		Symbol:    symbol,
		Timeframe: timeframe,
		Source:    "wallex",
	}, nil
}
