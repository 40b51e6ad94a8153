// Package profile turns a profile name or a list of indicator tokens into
// computed indicator columns on a frame.Table.
package profile

import (
	"maps"
	"slices"
)

// Profile identifiers. The set is closed.
const (
	Basic    = "basic"
	Momentum = "momentum"
	Custom   = "custom"
	All      = "all"
)

// Names returns every profile identifier.
func Names() []string {
	return []string{Basic, Momentum, Custom, All}
}

// DefaultMembership returns the token lists of the predefined profiles.
// "all" is derived from the registry and "custom" from the caller, so neither
// appears here.
func DefaultMembership() map[string][]string {
	return map[string][]string{
		Basic:    {"sma_20", "ema_20", "rsi_14"},
		Momentum: {"rsi_14", "macd", "stoch", "roc_10"},
	}
}

// overridable reports whether a profile's membership may be replaced.
func overridable(name string) bool {
	_, ok := DefaultMembership()[name]
	return ok
}

func cloneMembership(m map[string][]string) map[string][]string {
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = slices.Clone(v)
	}
	return out
}
