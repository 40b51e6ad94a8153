package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/simple-indicators/internal/indicator"
)

func TestDefaultRegistryOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"sma", "ema", "rsi", "bb", "vwap", "macd", "stoch", "atr", "roc", "ha"},
		DefaultRegistry().Names())
}

func TestDefinitionOutputsAreDeterministic(t *testing.T) {
	for _, def := range DefaultRegistry().Definitions() {
		t.Run(def.Name, func(t *testing.T) {
			first := def.Outputs(def.Defaults())
			second := def.Outputs(def.Defaults())
			assert.Equal(t, first, second)
			assert.NotEmpty(t, first)

			out, err := def.Compute(make([][]float64, len(def.Inputs)), def.Defaults())
			require.NoError(t, err)
			assert.Len(t, out, len(first), "compute must return one series per output name")
		})
	}
}

func TestLookupIgnoresCase(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"rsi", "RSI", "Rsi"} {
		def, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "rsi", def.Name)
	}
	_, ok := r.Lookup("adx")
	assert.False(t, ok)
}

func TestNewRegistryRejectsBadDefinitions(t *testing.T) {
	compute := func(in [][]float64, _ []int) ([][]float64, error) { return in, nil }
	outputs := func([]int) []string { return []string{"X"} }
	valid := Definition{Name: "x", Inputs: []string{"close"}, Compute: compute, Outputs: outputs}

	_, err := NewRegistry(valid)
	require.NoError(t, err)

	tests := map[string][]Definition{
		"empty name":      {{Inputs: []string{"close"}, Compute: compute, Outputs: outputs}},
		"upper case":      {{Name: "X", Inputs: []string{"close"}, Compute: compute, Outputs: outputs}},
		"separator":       {{Name: "x_y", Inputs: []string{"close"}, Compute: compute, Outputs: outputs}},
		"no compute":      {{Name: "x", Inputs: []string{"close"}, Outputs: outputs}},
		"no inputs":       {{Name: "x", Compute: compute, Outputs: outputs}},
		"bad default":     {{Name: "x", Params: []Param{{Name: "period"}}, Inputs: []string{"close"}, Compute: compute, Outputs: outputs}},
		"duplicate names": {valid, valid},
	}
	for name, defs := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(defs...)
			assert.Error(t, err)
		})
	}
}

func TestParseToken(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		token   string
		name    string
		params  []int
		outputs []string
	}{
		{"sma_10", "sma", []int{10}, []string{"SMA_10"}},
		{"SMA_10", "sma", []int{10}, []string{"SMA_10"}},
		{"rsi", "rsi", []int{14}, []string{"RSI_14"}},
		{"bb", "bb", []int{20}, []string{"BB_UPPER_20", "BB_MIDDLE_20", "BB_LOWER_20"}},
		{"vwap", "vwap", []int{}, []string{"VWAP"}},
		{"macd_5", "macd", []int{5, 26, 9}, []string{"MACD_5_26_9", "MACD_SIGNAL_5_26_9", "MACD_HIST_5_26_9"}},
		{"macd_8_21_5", "macd", []int{8, 21, 5}, []string{"MACD_8_21_5", "MACD_SIGNAL_8_21_5", "MACD_HIST_8_21_5"}},
		{"stoch_14_3_3", "stoch", []int{14, 3, 3}, []string{"STOCH_K_14_3_3", "STOCH_D_14_3_3"}},
		{"ha", "ha", []int{}, []string{"HA_OPEN", "HA_HIGH", "HA_LOW", "HA_CLOSE"}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			s, err := ParseToken(r, tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.name, s.Name)
			assert.Equal(t, tt.params, s.Params)
			assert.Equal(t, tt.outputs, s.Outputs)
		})
	}
}

func TestParseTokenRejects(t *testing.T) {
	r := DefaultRegistry()
	for _, tok := range []string{
		"", "_", "sma_", "sma__5", "sma_+5", "sma_ 5", " sma", "sma_5.5",
		"sma_0", "sma_-1", "sma_99999999999999999999", "sma_5_5", "unknown", "vwap_1",
		"stoch_0", "macd_9_9",
	} {
		t.Run(tok, func(t *testing.T) {
			_, err := ParseToken(r, tok)
			assert.True(t, indicator.IsValidation(err), "token %q: %v", tok, err)
		})
	}
}

func TestSpecToken(t *testing.T) {
	s, err := ParseToken(DefaultRegistry(), "MACD_5")
	require.NoError(t, err)
	assert.Equal(t, "macd_5_26_9", s.Token())

	s, err = ParseToken(DefaultRegistry(), "VWAP")
	require.NoError(t, err)
	assert.Equal(t, "vwap", s.Token())
}
