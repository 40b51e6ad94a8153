package tfutils

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// BaseTimeframe is the finest stored timeframe; every other timeframe can be
// built from it.
const BaseTimeframe = "1m"

var timeframes = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
}

// ParseTimeframe parses timeframe string (e.g., "5m", "1h") to time.Duration
func ParseTimeframe(timeframe string) (time.Duration, error) {
	d, ok := timeframes[timeframe]
	if !ok {
		return 0, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
	return d, nil
}

// GetTimeframeDuration returns the duration for a given timeframe, or 0 if
// it is not supported.
func GetTimeframeDuration(timeframe string) time.Duration {
	return timeframes[timeframe]
}

func TimeframeMinutes(timeframe string) int {
	return int(timeframes[timeframe] / time.Minute)
}

// GetSupportedTimeframes returns all supported timeframes, shortest first
func GetSupportedTimeframes() []string {
	out := make([]string, 0, len(timeframes))
	for tf := range timeframes {
		out = append(out, tf)
	}
	slices.SortFunc(out, func(a, b string) int {
		return cmp.Compare(timeframes[a], timeframes[b])
	})
	return out
}

// IsValidTimeframe checks if a timeframe is supported
func IsValidTimeframe(timeframe string) bool {
	return GetTimeframeDuration(timeframe) > 0
}
