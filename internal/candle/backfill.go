package candle

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/simple-indicators/internal/utils"
)

// DefaultBackfillChunk is the span fetched per request during a backfill.
const DefaultBackfillChunk = 30 * 24 * time.Hour

const backfillCallTimeout = 30 * time.Second

// SaveFunc persists candles.
type SaveFunc func(ctx context.Context, candles []Candle) error

// Backfill copies candles of one timeframe in [from, to) from fetch to save,
// one chunk at a time, and returns how many candles were saved. A chunk of
// zero uses DefaultBackfillChunk.
func Backfill(ctx context.Context, fetch FetchFunc, save SaveFunc, symbol, timeframe string, from, to time.Time, chunk time.Duration) (int, error) {
	if !from.Before(to) {
		return 0, fmt.Errorf("start %s must be before end %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	if chunk <= 0 {
		chunk = DefaultBackfillChunk
	}

	log := utils.GetLogger().WithField("symbol", symbol).WithField("timeframe", timeframe)
	saved := 0
	for curr := from; curr.Before(to); {
		next := curr.Add(chunk)
		if next.After(to) {
			next = to
		}

		fetchCtx, cancel := context.WithTimeout(ctx, backfillCallTimeout)
		candles, err := fetch(fetchCtx, symbol, timeframe, curr, next)
		cancel()
		if err != nil {
			return saved, fmt.Errorf("error fetching candles from %s to %s: %w",
				curr.Format(time.RFC3339), next.Format(time.RFC3339), err)
		}

		if len(candles) > 0 {
			saveCtx, cancel := context.WithTimeout(ctx, backfillCallTimeout)
			err = save(saveCtx, candles)
			cancel()
			if err != nil {
				return saved, fmt.Errorf("error saving candles: %w", err)
			}
			saved += len(candles)
			log.Infof("Saved %d candles [%s-%s]", len(candles), curr.Format(time.RFC3339), next.Format(time.RFC3339))
		} else {
			log.Debugf("No candles available from %s to %s", curr.Format(time.RFC3339), next.Format(time.RFC3339))
		}

		curr = next
	}
	return saved, nil
}
