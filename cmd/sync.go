package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/db"
	"github.com/amirphl/simple-indicators/internal/exchange"
	"github.com/amirphl/simple-indicators/internal/utils"
)

func newSyncCmd(a *app) *cobra.Command {
	var (
		migrate bool
		chunk   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download candles from Wallex into Postgres",
		Long: `Download candles of --interval for every symbol from the Wallex API and
upsert them into the Postgres candle store. Wallex serves 1m, 1h and 1d
candles; other intervals are built from 1m candles when prepared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), a, migrate, chunk)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the candle schema before syncing")
	cmd.Flags().DurationVar(&chunk, "chunk", candle.DefaultBackfillChunk, "time span fetched per request")
	return cmd
}

func runSync(ctx context.Context, a *app, migrate bool, chunk time.Duration) error {
	cfg := a.cfg
	if cfg.DBConnStr == "" {
		return fmt.Errorf("sync needs a Postgres connection string (--db or DB_CONN_STR)")
	}
	if _, ok := exchange.Resolution(cfg.Interval); !ok {
		return fmt.Errorf("wallex does not serve %s candles; sync 1m instead", cfg.Interval)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := db.Open(ctx, cfg.DBConnStr, cfg.DBMaxOpen, cfg.DBMaxIdle)
	if err != nil {
		return err
	}
	defer store.Close()

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	upstream := exchange.NewWallex(exchange.Options{
		APIKey:            cfg.WallexAPIKey,
		RequestsPerSecond: cfg.WallexRPS,
		MaxRetries:        cfg.WallexMaxRetries,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for _, symbol := range cfg.Symbols {
		g.Go(func() error {
			saved, err := candle.Backfill(gctx, upstream.FetchCandles, store.SaveCandles, symbol, cfg.Interval, cfg.From, cfg.To, chunk)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			count, err := store.GetCandleCount(gctx, symbol, cfg.Interval, cfg.From, cfg.To)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			utils.GetLogger().WithField("symbol", symbol).Infof("synced %d candles, %d stored in range", saved, count)
			return nil
		})
	}
	return g.Wait()
}
