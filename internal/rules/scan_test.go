package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func stmts(text string) []string {
	var out []string
	for _, ln := range candidateLines(text) {
		out = append(out, text[ln.stmt:lineEnd(text, ln.stmt)])
	}
	return out
}

func TestCandidateLines(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple block",
			input: "func f() {\n\ta()\n\n\tb()\n}\n",
			want:  []string{"func f() {", "a()", "b()", "}"},
		},
		{
			name:  "binary operator continues",
			input: "x := a +\n\tb()\ny()\n",
			want:  []string{"x := a +", "y()"},
		},
		{
			name:  "argument list continues",
			input: "f(\n\ta,\n)\ng()\n",
			want:  []string{"f(", "g()"},
		},
		{
			name:  "raw string body skipped",
			input: "s := `\nnot()\n`\nafter()\n",
			want:  []string{"s := `", "after()"},
		},
		{
			name:  "block comment skipped",
			input: "/* a\nb()\n*/\nc()\n",
			want:  []string{"/* a", "c()"},
		},
		{
			name:  "line comment does not count as token",
			input: "x := a + // sum\n\tb()\n",
			want:  []string{"x := a + // sum"},
		},
		{
			name:  "decrement ends statement",
			input: "i--\nf()\n",
			want:  []string{"i--", "f()"},
		},
		{
			name:  "case label",
			input: "case 1:\n\tf()\n",
			want:  []string{"case 1:", "f()"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, stmts(tt.input))
		})
	}
}

func TestScanCall(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{"empty call", "f()", 3, true},
		{"nested", "f(g(a), []int{1})", 17, true},
		{"string with paren", `f(")")`, 6, true},
		{"rune with paren", `f(')')`, 6, true},
		{"raw string spanning lines", "f(`\n)`)", 7, true},
		{"comment with paren", "f(/* ) */ a)", 12, true},
		{"mismatched", "f(]", 0, false},
		{"unterminated", "f(a", 0, false},
		{"newline in string", "f(\"\n\")", 0, false},
		{"not an open paren", "f", 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			open := 1
			got, ok := scanCall(tt.input, open)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreviousLine(t *testing.T) {
	t.Parallel()
	text := "one\ntwo\nthree"

	_, ok := previousLine(text, 0)
	assert.False(t, ok)

	prev, ok := previousLine(text, 4)
	assert.True(t, ok)
	assert.Equal(t, "one", prev)

	prev, ok = previousLine(text, 8)
	assert.True(t, ok)
	assert.Equal(t, "two", prev)
}
