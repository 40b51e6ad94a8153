package profile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/amirphl/simple-indicators/internal/frame"
	"github.com/amirphl/simple-indicators/internal/indicator"
)

// Composer resolves profiles into specs and appends their columns to tables.
// It is immutable after construction and safe for concurrent use.
type Composer struct {
	registry   *Registry
	membership map[string][]string
}

// NewComposer builds a composer over registry (the built-in registry when nil).
// overrides replaces the token list of predefined profiles; only "basic" and
// "momentum" can be overridden. Every override token is parsed up front.
func NewComposer(registry *Registry, overrides map[string][]string) (*Composer, error) {
	if registry == nil {
		registry = DefaultRegistry()
	}
	c := &Composer{
		registry:   registry,
		membership: DefaultMembership(),
	}
	for name, tokens := range overrides {
		if !overridable(name) {
			return nil, indicator.Validationf("profile %q cannot be overridden", name)
		}
		if len(tokens) == 0 {
			return nil, indicator.Validationf("profile %q: override has no indicators", name)
		}
		for _, tok := range tokens {
			if _, err := ParseToken(registry, tok); err != nil {
				return nil, fmt.Errorf("profile %q: %w", name, err)
			}
		}
		c.membership[name] = slices.Clone(tokens)
	}
	return c, nil
}

// MustNewComposer is NewComposer that panics on error.
func MustNewComposer(registry *Registry, overrides map[string][]string) *Composer {
	c, err := NewComposer(registry, overrides)
	if err != nil {
		panic(err)
	}
	return c
}

// Registry returns the registry the composer resolves tokens against.
func (c *Composer) Registry() *Registry { return c.registry }

// Membership returns a copy of the predefined profile token lists.
func (c *Composer) Membership() map[string][]string {
	return cloneMembership(c.membership)
}

// Tokens returns the token list a profile resolves to. custom is only used
// by the "custom" profile and must not be empty there.
func (c *Composer) Tokens(profile string, custom []string) ([]string, error) {
	switch profile {
	case Basic, Momentum:
		return slices.Clone(c.membership[profile]), nil
	case All:
		return c.registry.Names(), nil
	case Custom:
		if len(custom) == 0 {
			return nil, indicator.Validationf("profile %q requires at least one indicator token", Custom)
		}
		return slices.Clone(custom), nil
	default:
		return nil, indicator.Validationf("unknown profile %q, want one of %s", profile, strings.Join(Names(), ", "))
	}
}

// Resolve parses a profile into specs, in resolution order. Every token is
// parsed before anything is returned, so the first bad token fails the whole
// profile.
func (c *Composer) Resolve(profile string, custom []string) ([]Spec, error) {
	tokens, err := c.Tokens(profile, custom)
	if err != nil {
		return nil, err
	}
	specs := make([]Spec, 0, len(tokens))
	for _, tok := range tokens {
		s, err := ParseToken(c.registry, tok)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Columns returns the output column names a profile adds, in order and
// without duplicates.
func (c *Composer) Columns(profile string, custom []string) ([]string, error) {
	specs, err := c.Resolve(profile, custom)
	if err != nil {
		return nil, err
	}
	var cols []string
	for _, s := range specs {
		for _, name := range s.Outputs {
			if !slices.Contains(cols, name) {
				cols = append(cols, name)
			}
		}
	}
	return cols, nil
}

// PrepareData returns a copy of t with the profile's indicator columns
// appended. An output column that already exists is overwritten in place.
//
// Every spec reads only the original columns of t. All tokens and required
// input columns are validated before any indicator runs. t is never modified,
// and on error no table is returned.
func (c *Composer) PrepareData(t *frame.Table, profile string, custom []string) (*frame.Table, error) {
	if t == nil {
		return nil, indicator.Validationf("input table is nil")
	}
	specs, err := c.Resolve(profile, custom)
	if err != nil {
		return nil, err
	}
	for _, s := range specs {
		if err := t.Require(s.Inputs...); err != nil {
			return nil, indicator.Validationf("%s: %w", s.Token(), err)
		}
	}

	out := t.Clone()
	for _, s := range specs {
		cols, err := s.Compute(t)
		if err != nil {
			return nil, err
		}
		for i, name := range s.Outputs {
			if err := out.Set(name, cols[i]); err != nil {
				return nil, fmt.Errorf("%s: %w", s.Token(), err)
			}
		}
	}
	return out, nil
}

var defaultComposer = MustNewComposer(nil, nil)

// PrepareData runs the built-in composer with the default profile membership.
func PrepareData(t *frame.Table, profile string, custom []string) (*frame.Table, error) {
	return defaultComposer.PrepareData(t, profile, custom)
}
