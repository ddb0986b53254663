package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSuggestVersion covers the minor-only suggestion policy and its
// fallback behavior for empty or unparseable input.
func TestSuggestVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "1.0"},        // no history yet
		{"A9.1", "9.2"},    // leading track letter stripped
		{"B3", "3.1"},      // missing minor defaults to 0
		{"garbage", "1.0"}, // unparseable falls back
		{"10.3", "10.4"},   // bare version, no track letter
		{"R0.0", "0.1"},
		{"A10.3[F|t|+]", "10.4"}, // full composed tag tolerated
		{"1.2.3", "1.0"},         // not a valid version form
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestVersion(tt.input))
		})
	}
}

// TestSuggestVersion_NeverBumpsMajor pins the deliberate policy that
// automation only ever increments the minor component.
func TestSuggestVersion_NeverBumpsMajor(t *testing.T) {
	assert.Equal(t, "9.10", SuggestVersion("A9.9"))
	assert.Equal(t, "42.1", SuggestVersion("42.0"))
}
