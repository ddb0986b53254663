package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTerminal_Confirm covers explicit answers, the empty-input
// default, and EOF behavior.
func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		def      bool
		expected bool
	}{
		{"yes", "y\n", false, true},
		{"yes word", "yes\n", false, true},
		{"uppercase yes", "Y\n", false, true},
		{"no", "n\n", true, false},
		{"empty takes default true", "\n", true, true},
		{"empty takes default false", "\n", false, false},
		{"eof takes default", "", true, true},
		{"garbage is no", "maybe\n", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			term := &Terminal{In: strings.NewReader(tt.input), Out: &out}
			assert.Equal(t, tt.expected, term.Confirm("proceed?", tt.def))
			assert.Contains(t, out.String(), "proceed?")
		})
	}
}

// TestTerminal_ConsecutivePrompts verifies that multi-line input
// survives across prompts (the reader must be shared, not recreated).
func TestTerminal_ConsecutivePrompts(t *testing.T) {
	var out strings.Builder
	term := &Terminal{In: strings.NewReader("y\nn\nA\n"), Out: &out}

	assert.True(t, term.Confirm("first?", false))
	assert.False(t, term.Confirm("second?", true))
	assert.Equal(t, "A", term.Input("track", "B"))
}

// TestTerminal_Input covers explicit values and the default fallback.
func TestTerminal_Input(t *testing.T) {
	var out strings.Builder
	term := &Terminal{In: strings.NewReader("10.3\n\n"), Out: &out}

	assert.Equal(t, "10.3", term.Input("version", "1.0"))
	assert.Equal(t, "1.0", term.Input("version", "1.0"))
	assert.Contains(t, out.String(), "[1.0]")
}

// TestAuto verifies the non-interactive prompter answers with defaults.
func TestAuto(t *testing.T) {
	var p Prompter = Auto{}
	assert.True(t, p.Confirm("anything?", true))
	assert.False(t, p.Confirm("anything?", false))
	assert.Equal(t, "F", p.Input("environment", "F"))
}

// TestOutput_Levels verifies suppression rules for quiet and verbose.
func TestOutput_Levels(t *testing.T) {
	var buf strings.Builder
	o := NewOutput(&buf, false, true) // quiet

	o.Infof("hidden info")
	o.Successf("hidden success")
	o.Verbosef("hidden trace")
	o.Warnf("visible warning")
	o.Errorf("visible error")

	s := buf.String()
	assert.NotContains(t, s, "hidden")
	assert.Contains(t, s, "visible warning")
	assert.Contains(t, s, "visible error")

	buf.Reset()
	o = NewOutput(&buf, true, false) // verbose
	o.Verbosef("trace line")
	assert.Contains(t, buf.String(), "trace line")
}
