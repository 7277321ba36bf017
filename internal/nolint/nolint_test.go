package nolint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNolintRules(t *testing.T) {
	t.Parallel()
	input := "rule1,rule2,rule3"
	expected := []string{"rule1", "rule2", "rule3"}
	result := parseIgnoreRuleNames(input)
	assert.Len(t, result, len(expected))
	for _, rule := range expected {
		assert.Contains(t, result, rule)
	}
}

func TestSuppressed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"bare nolint", "\tdefer rows.Close() //nolint", true},
		{"errcheck listed", "\tdefer rows.Close() //nolint:errcheck", true},
		{"errcheck among others", "\tio.Copy(dst, src) //nolint:gosec,errcheck // stream ends on close", true},
		{"all", "\tio.Copy(dst, src) //nolint:all", true},
		{"other linter only", "\tdefer rows.Close() //nolint:gosec", false},
		{"no directive", "\tdefer rows.Close() // closes rows", false},
		{"empty rule list", "\tdefer rows.Close() //nolint:", false},
		{"not a directive", "\tdefer rows.Close() //nolintfoo", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Suppressed(tt.text, "errcheck"))
		})
	}
}

func TestStandalone(t *testing.T) {
	t.Parallel()
	assert.True(t, Standalone("\t//nolint:errcheck", "errcheck"))
	assert.True(t, Standalone("  //nolint", "errcheck"))
	assert.False(t, Standalone("\tx := 1 //nolint:errcheck", "errcheck"))
	assert.False(t, Standalone("\t//nolint:unused", "errcheck"))
	assert.False(t, Standalone("", "errcheck"))
}
