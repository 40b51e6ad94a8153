package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/config"
	"github.com/amirphl/simple-indicators/internal/frame"
	"github.com/amirphl/simple-indicators/internal/profile"
	"github.com/amirphl/simple-indicators/internal/utils"
)

func newPrepareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Load candles and append the indicator columns of a profile",
		Example: `  indicators prepare --symbols BTCIRT,ETHIRT --interval 1h --profile momentum
  indicators prepare --source csv --csv-path data/{symbol}.csv --profile custom --indicators sma_50,bb_20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrepare(cmd.Context(), a)
		},
	}

	fs := cmd.Flags()
	fs.String("profile", "", "indicator profile: "+strings.Join(profile.Names(), ", "))
	fs.StringSlice("indicators", nil, "indicator tokens for the custom profile, e.g. sma_50,rsi_14")
	fs.Int("tail", 0, "number of trailing rows to print")
	fs.String("output-csv", "", "write the prepared table to this CSV file; {symbol} is replaced by the symbol")
	fs.Int("concurrency", 0, "symbols processed at once")
	return cmd
}

func runPrepare(ctx context.Context, a *app) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.OutputCSV != "" && len(cfg.Symbols) > 1 && !strings.Contains(cfg.OutputCSV, candle.SymbolPlaceholder) {
		return fmt.Errorf("output_csv must contain %s when preparing more than one symbol", candle.SymbolPlaceholder)
	}

	composer, err := profile.NewComposer(nil, cfg.Profiles)
	if err != nil {
		return err
	}
	// Reject bad tokens before touching any source.
	indicatorCols, err := composer.Columns(cfg.Profile, cfg.CustomIndicators)
	if err != nil {
		return err
	}

	src, release, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			utils.GetLogger().WithError(err).Warn("closing source")
		}
	}()

	results, err := prepareAll(ctx, src, composer, cfg)
	if err != nil {
		return err
	}

	for i, symbol := range cfg.Symbols {
		t := results[i]
		title := fmt.Sprintf("%s %s %s", symbol, cfg.Interval, cfg.Profile)
		if cfg.Tail > 0 {
			renderTail(a.out, title, t, cfg.Tail)
		}
		renderSummary(a.out, title, t, indicatorCols)

		if cfg.OutputCSV != "" {
			path := strings.ReplaceAll(cfg.OutputCSV, candle.SymbolPlaceholder, symbol)
			if err := writeCSV(path, t); err != nil {
				return err
			}
			utils.GetLogger().Infof("Saved %s to %s", symbol, path)
		}
	}
	return nil
}

// prepareAll loads and prepares every symbol concurrently. Results follow
// the order of cfg.Symbols.
func prepareAll(ctx context.Context, src candle.Source, composer *profile.Composer, cfg config.Config) ([]*frame.Table, error) {
	results := make([]*frame.Table, len(cfg.Symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, symbol := range cfg.Symbols {
		g.Go(func() error {
			log := utils.GetLogger().WithField("symbol", symbol)
			data, err := src.GetData(gctx, symbol, cfg.From, cfg.To, cfg.Interval)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			log.Debugf("loaded %d rows", data.Len())
			if data.Len() == 0 {
				log.Warn("no candles in range")
			}

			prepared, err := composer.PrepareData(data, cfg.Profile, cfg.CustomIndicators)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			results[i] = prepared
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeCSV(path string, t *frame.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := candle.WriteTable(f, t); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
