// Package indicator provides technical analysis indicators for financial markets.
//
// Every function is a pure transform: inputs are never modified and the
// result is a newly allocated series of the same length as the input.
// Positions without enough history hold math.NaN().
package indicator

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidPeriod marks a window or smoothing parameter below 1.
	ErrInvalidPeriod = errors.New("period must be at least 1")
	// ErrLengthMismatch marks input series of different lengths.
	ErrLengthMismatch = errors.New("input series lengths differ")
)

// ValidationError is the single error kind raised for invalid input: bad
// parameters, unknown indicators or profiles, malformed tokens and missing
// input columns. Err holds the underlying cause when there is one.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return e.Err }

// Validationf builds a *ValidationError. A %w verb in format becomes the
// error's cause.
func Validationf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return &ValidationError{Msg: err.Error(), Err: errors.Unwrap(err)}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func checkPeriod(name string, period int) error {
	if period < 1 {
		return Validationf("%s: %w, got %d", name, ErrInvalidPeriod, period)
	}
	return nil
}

func checkSameLength(name string, series ...[]float64) error {
	for i := 1; i < len(series); i++ {
		if len(series[i]) != len(series[0]) {
			return Validationf("%s: %w (%d vs %d)", name, ErrLengthMismatch, len(series[0]), len(series[i]))
		}
	}
	return nil
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Last returns the last defined value of a series and whether one exists.
func Last(series []float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i], true
		}
	}
	return math.NaN(), false
}
