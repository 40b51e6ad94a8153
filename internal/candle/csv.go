package candle

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/simple-indicators/internal/frame"
	"github.com/amirphl/simple-indicators/internal/tfutils"
)

// SymbolPlaceholder in a CSVSource path is replaced by the requested symbol.
const SymbolPlaceholder = "{symbol}"

var (
	// ErrMissingColumn is returned when the CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing csv column")
	// ErrInvalidTimeFormat is returned when a timestamp cannot be parsed.
	ErrInvalidTimeFormat = errors.New("cannot parse time string")
	// ErrInvalidNumber is returned when a price or volume is not a number.
	ErrInvalidNumber = errors.New("invalid number")
)

var csvColumns = []string{"timestamp", frame.ColOpen, frame.ColHigh, frame.ColLow, frame.ColClose, frame.ColVolume}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// CSVSource reads candles of one timeframe from CSV files with a
// timestamp,open,high,low,close,volume header. Column order is free and
// extra columns are ignored.
type CSVSource struct {
	Path      string
	Timeframe string
}

// NewCSVSource creates a CSV source. path may contain SymbolPlaceholder.
func NewCSVSource(path, timeframe string) (*CSVSource, error) {
	if path == "" {
		return nil, errors.New("csv path cannot be empty")
	}
	if !tfutils.IsValidTimeframe(timeframe) {
		return nil, fmt.Errorf("unsupported csv timeframe %q", timeframe)
	}
	return &CSVSource{Path: path, Timeframe: timeframe}, nil
}

func (s *CSVSource) path(symbol string) string {
	return strings.ReplaceAll(s.Path, SymbolPlaceholder, symbol)
}

// ReadCandles reads every candle in the file for symbol.
func (s *CSVSource) ReadCandles(symbol string) ([]Candle, error) {
	file, err := os.Open(s.path(symbol))
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // read only
	defer file.Close()

	candles, err := ReadCandles(file, symbol, s.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name(), err)
	}
	return candles, nil
}

// GetData implements Source. Rows outside [start, end) are dropped and the
// rest are aggregated up to interval when it is coarser than the file.
func (s *CSVSource) GetData(ctx context.Context, symbol string, start, end time.Time, interval string) (*frame.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !tfutils.IsValidTimeframe(interval) {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}

	all, err := s.ReadCandles(symbol)
	if err != nil {
		return nil, err
	}
	var inRange []Candle
	for _, c := range all {
		if !c.Timestamp.Before(start) && c.Timestamp.Before(end) {
			inRange = append(inRange, c)
		}
	}

	candles, err := Resample(inRange, interval)
	if err != nil {
		return nil, err
	}
	return ToTable(candles)
}

// ReadCandles decodes CSV candles from r.
func ReadCandles(r io.Reader, symbol, timeframe string) ([]Candle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, err
	}
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idx := make([]int, len(csvColumns))
	for i, name := range csvColumns {
		p, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		idx[i] = p
	}

	var candles []Candle
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		c, err := decodeRecord(record, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c.Symbol = symbol
		c.Timeframe = timeframe
		c.Source = "csv"
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func decodeRecord(record []string, idx []int) (Candle, error) {
	var c Candle
	ts, err := parseTime(record[idx[0]])
	if err != nil {
		return c, err
	}
	c.Timestamp = ts

	values := make([]float64, 5)
	for i := range values {
		raw := record[idx[i+1]]
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, fmt.Errorf("%w: %s %q", ErrInvalidNumber, csvColumns[i+1], raw)
		}
		values[i] = v
	}
	c.Open, c.High, c.Low, c.Close, c.Volume = values[0], values[1], values[2], values[3], values[4]
	return c, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
}

// WriteTable writes t as CSV: a timestamp column followed by every table
// column in order. Missing values are written as empty fields.
func WriteTable(w io.Writer, t *frame.Table) error {
	cw := csv.NewWriter(w)

	cols := t.Columns()
	if err := cw.Write(append([]string{"timestamp"}, cols...)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	index := t.Index()
	row := make([]string, len(cols)+1)
	for i, ts := range index {
		row[0] = ts.UTC().Format(time.RFC3339)
		for j, v := range t.Row(i) {
			if math.IsNaN(v) {
				row[j+1] = ""
			} else {
				row[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
