package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// garble produces the corruption Repair undoes: UTF-8 bytes read as ISO-8859-1.
func garble(t *testing.T, s string) string {
	t.Helper()
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	require.NoError(t, err)
	return out
}

func TestRepairRoundTrip(t *testing.T) {
	originals := []string{
		"José",
		"Té de manzanilla",
		"Recepción: día uno",
		"Ñandú",
		"Hola 😀",
		"Straße",
		"plain ascii",
	}
	for _, want := range originals {
		got := Repair(garble(t, want))
		assert.Equal(t, want, got, "garbled %q", garble(t, want))
	}
}

func TestRepairKnownSamples(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"JosÃ©", "José"},
		{"TÃ©", "Té"},
		{"MaÃ±ana", "Mañana"},
		{"", ""},
		{"no accents here", "no accents here"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Repair(tt.in), "Repair(%q)", tt.in)
	}
}

func TestRepairMixedSpans(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"garbled with check mark", "TelÃ©fono ✓", "Teléfono ✓"},
		{"correct accent beside garbled", "café JosÃ©", "café José"},
		{"emoji only", "🎉 party", "🎉 party"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repair(tt.in))
		})
	}

	t.Run("garbled emoji beside correct emoji", func(t *testing.T) {
		in := garble(t, "José 👍") + " 😀"
		assert.Equal(t, "José 👍 😀", Repair(in))
	})
}

func TestRepairLeavesCleanText(t *testing.T) {
	clean := []string{
		"José",
		"naïve café",
		"Recepción",
		"Ünïcödé 😀 ✓",
		"Größe 10 €",
	}
	for _, s := range clean {
		assert.Equal(t, s, Repair(s))
	}
}

func TestRepairIdempotent(t *testing.T) {
	inputs := []string{
		"JosÃ©",
		"JosÃ© 😀",
		"naïve café",
		"TelÃ©fono ✓",
		"ascii",
		"Ã",
		"Ã©Ã",
		"JosÃ\u0083Â©",
		"MedellÃ\u0083Â\u00adn 😀",
	}
	for _, s := range inputs {
		once := Repair(s)
		assert.Equal(t, once, Repair(once), "input %q", s)
	}
}

func TestRepairDoublyGarbled(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{garble(t, garble(t, "José")), "José"},
		{garble(t, garble(t, "Peñalosa Núñez")), "Peñalosa Núñez"},
		{garble(t, garble(t, "Medellín")) + " 😀", "Medellín 😀"},
	}
	for _, tt := range tests {
		once := Repair(tt.in)
		assert.Equal(t, tt.want, once, "input %q", tt.in)
		assert.Equal(t, once, Repair(once), "second repair of %q", tt.in)
	}
}

func TestRepairValue(t *testing.T) {
	in := map[string]any{
		"name":  "JosÃ©",
		"count": 3,
		"tags":  []any{"TÃ©", nil, true},
		"nested": map[string]any{
			"city": "MedellÃ\u00adn",
		},
		"flat":  map[string]string{"a": "Ã±"},
		"list":  []string{"Ã©"},
		"empty": nil,
	}

	out, ok := RepairValue(in).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "José", out["name"])
	assert.Equal(t, 3, out["count"])
	assert.Equal(t, []any{"Té", nil, true}, out["tags"])
	assert.Equal(t, map[string]any{"city": "Medellín"}, out["nested"])
	assert.Equal(t, map[string]string{"a": "ñ"}, out["flat"])
	assert.Equal(t, []string{"é"}, out["list"])
	assert.Nil(t, out["empty"])

	// The input is not modified.
	assert.Equal(t, "JosÃ©", in["name"])
}
