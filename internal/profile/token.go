package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/amirphl/simple-indicators/internal/frame"
	"github.com/amirphl/simple-indicators/internal/indicator"
)

const tokenSeparator = "_"

// Spec is one resolved unit of work: a registered indicator with concrete
// params, the columns it reads and the columns it writes.
type Spec struct {
	Name    string
	Params  []int
	Inputs  []string
	Outputs []string

	compute ComputeFunc
}

// Token returns the canonical token, e.g. "macd_12_26_9".
func (s Spec) Token() string {
	if len(s.Params) == 0 {
		return s.Name
	}
	return s.Name + tokenSeparator + joinInts(s.Params)
}

// Compute runs the indicator on the spec's input columns of t and returns
// the outputs aligned with s.Outputs. t is not modified.
func (s Spec) Compute(t *frame.Table) ([][]float64, error) {
	if err := t.Require(s.Inputs...); err != nil {
		return nil, indicator.Validationf("%s: %w", s.Token(), err)
	}
	inputs := make([][]float64, len(s.Inputs))
	for i, name := range s.Inputs {
		inputs[i], _ = t.Column(name)
	}
	out, err := s.compute(inputs, s.Params)
	if err != nil {
		return nil, indicator.Validationf("%s: %w", s.Token(), err)
	}
	return out, nil
}

// ParseToken resolves a token of the form <name> or <name>_<int>[_<int>...]
// against r. The name is matched case-insensitively and the integers fill the
// indicator's params in order.
//
// Params are also checked against each other (for example macd fast < slow)
// so that an invalid token fails here rather than halfway through a profile.
func ParseToken(r *Registry, token string) (Spec, error) {
	if token == "" {
		return Spec{}, indicator.Validationf("empty indicator token")
	}

	parts := strings.Split(token, tokenSeparator)
	def, ok := r.Lookup(parts[0])
	if !ok {
		return Spec{}, indicator.Validationf("token %q: unknown indicator %q, want one of %s",
			token, parts[0], strings.Join(r.Names(), ", "))
	}

	args := parts[1:]
	if len(args) > len(def.Params) {
		return Spec{}, indicator.Validationf("token %q: %s takes at most %d parameter(s), got %d",
			token, def.Name, len(def.Params), len(args))
	}

	params := def.Defaults()
	for i, arg := range args {
		v, err := parsePositive(arg)
		if err != nil {
			return Spec{}, indicator.Validationf("token %q: %s %w", token, def.Params[i].Name, err)
		}
		params[i] = v
	}

	if _, err := def.Compute(make([][]float64, len(def.Inputs)), params); err != nil {
		return Spec{}, indicator.Validationf("token %q: %w", token, err)
	}

	return Spec{
		Name:    def.Name,
		Params:  params,
		Inputs:  append([]string(nil), def.Inputs...),
		Outputs: def.Outputs(params),
		compute: def.Compute,
	}, nil
}

// parsePositive accepts only plain decimal digits, so "+5", "-1" and " 5"
// are rejected rather than coerced.
func parsePositive(s string) (int, error) {
	if s == "" {
		return 0, errors.New("is empty")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%q is not a positive integer", s)
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	if v < 1 {
		return 0, fmt.Errorf("%w, got %d", indicator.ErrInvalidPeriod, v)
	}
	return v, nil
}
