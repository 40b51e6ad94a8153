// Package frame provides the time-indexed column table indicators are computed over.
package frame

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Standard OHLCV column names produced by candle sources.
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

var (
	// ErrColumnNotFound is returned when a required column is absent.
	ErrColumnNotFound = errors.New("column not found")
	// ErrLengthMismatch is returned when a column length differs from the index length.
	ErrLengthMismatch = errors.New("column length does not match index length")
	// ErrUnorderedIndex is returned when the index is not strictly increasing.
	ErrUnorderedIndex = errors.New("index must be strictly increasing")
)

// Table is an ordered set of named float64 columns sharing one time index.
//
// Column slices are never written in place once stored: Set always replaces
// the slice. That lets Clone share column storage between tables.
type Table struct {
	index []time.Time
	names []string
	cols  map[string][]float64
}

// New creates an empty table over the given index. The index must be strictly
// increasing; duplicate timestamps are rejected.
func New(index []time.Time) (*Table, error) {
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("%w: row %d (%s) is not after row %d (%s)",
				ErrUnorderedIndex, i, index[i].Format(time.RFC3339), i-1, index[i-1].Format(time.RFC3339))
		}
	}
	idx := make([]time.Time, len(index))
	copy(idx, index)
	return &Table{
		index: idx,
		cols:  make(map[string][]float64),
	}, nil
}

// MustNew is New that panics on error. Intended for tests and literals.
func MustNew(index []time.Time) *Table {
	t, err := New(index)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Index returns a copy of the row index.
func (t *Table) Index() []time.Time {
	idx := make([]time.Time, len(t.index))
	copy(idx, t.index)
	return idx
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// Has reports whether the column exists. Names are case-sensitive.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the stored values for name. The returned slice must not be
// modified; use Set to replace a column.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.cols[name]
	return v, ok
}

// Require checks that every named column is present.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.Has(n) {
			return fmt.Errorf("%w: %q", ErrColumnNotFound, n)
		}
	}
	return nil
}

// Set stores values under name. An existing column keeps its position and is
// overwritten; a new column is appended after the existing ones.
func (t *Table) Set(name string, values []float64) error {
	if name == "" {
		return errors.New("column name cannot be empty")
	}
	if len(values) != len(t.index) {
		return fmt.Errorf("%w: column %q has %d values, index has %d",
			ErrLengthMismatch, name, len(values), len(t.index))
	}
	if _, ok := t.cols[name]; !ok {
		t.names = append(t.names, name)
	}
	t.cols[name] = values
	return nil
}

// Clone returns a table with its own index and column set. Column slices are
// shared, which is safe because they are never written in place.
func (t *Table) Clone() *Table {
	c := &Table{
		index: make([]time.Time, len(t.index)),
		names: make([]string, len(t.names)),
		cols:  make(map[string][]float64, len(t.cols)),
	}
	copy(c.index, t.index)
	copy(c.names, t.names)
	for k, v := range t.cols {
		c.cols[k] = v
	}
	return c
}

// Tail returns a new table holding the last n rows.
func (t *Table) Tail(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.index) {
		n = len(t.index)
	}
	start := len(t.index) - n
	c := &Table{
		index: make([]time.Time, n),
		names: make([]string, len(t.names)),
		cols:  make(map[string][]float64, len(t.cols)),
	}
	copy(c.index, t.index[start:])
	copy(c.names, t.names)
	for k, v := range t.cols {
		part := make([]float64, n)
		copy(part, v[start:])
		c.cols[k] = part
	}
	return c
}

// Row returns the values of every column at row i, in column order.
// Missing values are NaN.
func (t *Table) Row(i int) []float64 {
	row := make([]float64, len(t.names))
	for j, n := range t.names {
		v := t.cols[n]
		if i < 0 || i >= len(v) {
			row[j] = math.NaN()
			continue
		}
		row[j] = v[i]
	}
	return row
}
