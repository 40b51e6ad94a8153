package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/amirphl/simple-indicators/internal/config"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or RFC3339)", s)
}

func addDataFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-file", "", "also write JSON logs to this file")
	fs.String("source", "", "candle source: memory, csv, postgres or wallex")
	fs.String("csv-path", "", "CSV file; {symbol} is replaced by the symbol")
	fs.String("csv-timeframe", "", "timeframe of the rows in the CSV file")
	fs.String("db", "", "Postgres connection string")
	fs.StringSlice("symbols", nil, "comma-separated symbols")
	fs.String("interval", "", "candle interval, e.g. 1m, 15m, 1h")
	fs.String("from", "", "start of the range (YYYY-MM-DD or RFC3339)")
	fs.String("to", "", "end of the range, exclusive")
	fs.Int64("seed", 0, "random walk seed for the memory source")
}

// overlayFlags copies every flag the user set onto cfg.
func overlayFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	strs := map[string]*string{
		"log-level":     &cfg.LogLevel,
		"log-file":      &cfg.LogFile,
		"source":        &cfg.Source,
		"csv-path":      &cfg.CSVPath,
		"csv-timeframe": &cfg.CSVTimeframe,
		"db":            &cfg.DBConnStr,
		"interval":      &cfg.Interval,
		"profile":       &cfg.Profile,
		"output-csv":    &cfg.OutputCSV,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	lists := map[string]*[]string{
		"symbols":    &cfg.Symbols,
		"indicators": &cfg.CustomIndicators,
	}
	for name, dst := range lists {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	ints := map[string]*int{
		"tail":        &cfg.Tail,
		"concurrency": &cfg.Concurrency,
	}
	for name, dst := range ints {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed("seed") {
		v, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = v
	}

	for name, dst := range map[string]*time.Time{"from": &cfg.From, "to": &cfg.To} {
		if !fs.Changed(name) {
			continue
		}
		s, err := fs.GetString(name)
		if err != nil {
			return err
		}
		t, err := parseDate(s)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*dst = t
	}
	return nil
}
