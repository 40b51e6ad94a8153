package main

import (
	"context"
	"fmt"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/config"
	"github.com/amirphl/simple-indicators/internal/db"
	"github.com/amirphl/simple-indicators/internal/exchange"
	"github.com/amirphl/simple-indicators/internal/tfutils"
	"github.com/amirphl/simple-indicators/internal/utils"
)

const randomWalkStartPrice = 100

// openSource builds the candle source named by cfg.Source. The returned
// function releases it.
func openSource(ctx context.Context, cfg config.Config) (candle.Source, func() error, error) {
	noop := func() error { return nil }
	log := utils.GetLogger().WithField("source", cfg.Source)

	switch cfg.Source {
	case config.SourceMemory:
		src, err := seedMemory(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Debugf("seeded random walk for %d symbols", len(cfg.Symbols))
		return src, noop, nil

	case config.SourceCSV:
		src, err := candle.NewCSVSource(cfg.CSVPath, cfg.CSVTimeframe)
		if err != nil {
			return nil, nil, err
		}
		return src, noop, nil

	case config.SourcePostgres:
		p, err := db.Open(ctx, cfg.DBConnStr, cfg.DBMaxOpen, cfg.DBMaxIdle)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Connected to Postgres")
		return p, p.Close, nil

	case config.SourceWallex:
		w := exchange.NewWallex(exchange.Options{
			APIKey:            cfg.WallexAPIKey,
			RequestsPerSecond: cfg.WallexRPS,
			MaxRetries:        cfg.WallexMaxRetries,
		})
		return w, noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported source %q", cfg.Source)
	}
}

// seedMemory fills a memory source with one random walk per symbol at the
// requested interval, covering [cfg.From, cfg.To).
func seedMemory(cfg config.Config) (*candle.MemorySource, error) {
	dur, err := tfutils.ParseTimeframe(cfg.Interval)
	if err != nil {
		return nil, err
	}
	start := cfg.From.UTC().Truncate(dur)
	n := int(cfg.To.Sub(start) / dur)

	src := candle.NewMemorySource()
	for i, symbol := range cfg.Symbols {
		walk, err := candle.RandomWalk(symbol, cfg.Interval, start, n, randomWalkStartPrice, cfg.Seed+int64(i))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}
		if err := src.SaveCandles(walk...); err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}
	}
	return src, nil
}
