package profile

import (
	"fmt"
	"strings"
)

// Param is one integer parameter of an indicator. Token suffixes fill params
// positionally; unfilled params keep Default.
type Param struct {
	Name    string
	Default int
}

// ComputeFunc computes every output series of an indicator. inputs are the
// table columns named by Definition.Inputs, in the same order. The returned
// slice is aligned with Definition.Outputs.
type ComputeFunc func(inputs [][]float64, params []int) ([][]float64, error)

// Definition describes a registered indicator: its parameter schema, the
// columns it reads, how it computes and how its output columns are named.
type Definition struct {
	Name        string
	Description string
	Params      []Param
	Inputs      []string
	Compute     ComputeFunc
	Outputs     func(params []int) []string
}

// Defaults returns a fresh slice holding every param's default value.
func (d Definition) Defaults() []int {
	out := make([]int, len(d.Params))
	for i, p := range d.Params {
		out[i] = p.Default
	}
	return out
}

// Registry is an ordered, read-only set of indicator definitions.
// Lookups are case-insensitive; registered names are lower case.
type Registry struct {
	defs   []Definition
	byName map[string]int
}

// NewRegistry builds a registry from defs, kept in the given order.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs:   make([]Definition, 0, len(defs)),
		byName: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.Name == "" || d.Name != strings.ToLower(d.Name) || strings.Contains(d.Name, tokenSeparator) {
			return nil, fmt.Errorf("invalid indicator name %q", d.Name)
		}
		if d.Compute == nil || d.Outputs == nil {
			return nil, fmt.Errorf("indicator %q: compute and outputs are required", d.Name)
		}
		if len(d.Inputs) == 0 {
			return nil, fmt.Errorf("indicator %q: at least one input column is required", d.Name)
		}
		for _, p := range d.Params {
			if p.Default < 1 {
				return nil, fmt.Errorf("indicator %q: default for %s must be positive", d.Name, p.Name)
			}
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("indicator %q registered twice", d.Name)
		}
		r.byName[d.Name] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r, nil
}

// MustNewRegistry is NewRegistry that panics on error.
func MustNewRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds a definition by name, ignoring case.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Definitions returns the registered definitions in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.defs))
	for i, d := range r.defs {
		out[i] = d.Name
	}
	return out
}

var defaultRegistry = MustNewRegistry(builtins()...)

// DefaultRegistry returns the registry of built-in indicators.
func DefaultRegistry() *Registry { return defaultRegistry }
