package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleApply(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		rule  *Rule
		input string
		want  string
	}{
		{
			name:  "deferred close",
			rule:  &Rule{Name: "defer-close", Callees: []string{"rows.Close"}, Deferred: true, Form: FormDeferDiscard, Comment: "Best-effort close"},
			input: "func f() {\n  defer rows.Close()\n}\n",
			want:  "func f() {\n  defer func() { _ = rows.Close() }() // Best-effort close\n}\n",
		},
		{
			name:  "deferred close keeps argument text",
			rule:  &Rule{Name: "defer-close", Callees: []string{"cursor.Close"}, Deferred: true, Form: FormDeferDiscard, Comment: "Best-effort close"},
			input: "\tdefer cursor.Close(ctx)\n",
			want:  "\tdefer func() { _ = cursor.Close(ctx) }() // Best-effort close\n",
		},
		{
			name:  "immediate close",
			rule:  &Rule{Name: "close", Callees: []string{"conn.Close"}, Comment: "Best-effort close"},
			input: "\tif err != nil {\n\t\tconn.Close()\n\t\treturn err\n\t}\n",
			want:  "\tif err != nil {\n\t\t_ = conn.Close() // Best-effort close\n\t\treturn err\n\t}\n",
		},
		{
			name:  "two results",
			rule:  &Rule{Name: "io-copy", Callees: []string{"io.Copy"}, Results: 2, Comment: "Best-effort copy"},
			input: "\tio.Copy(dst, src)\n",
			want:  "\t_, _ = io.Copy(dst, src) // Best-effort copy\n",
		},
		{
			name:  "existing comment is kept",
			rule:  &Rule{Name: "http-write", Callees: []string{"w.Write"}, Results: 2, Comment: "Error logged by HTTP framework"},
			input: "\tw.Write(body)   // plain text\n",
			want:  "\t_, _ = w.Write(body)   // plain text\n",
		},
		{
			name:  "explicit check form",
			rule:  &Rule{Name: "json", Callees: []string{"json.NewEncoder(w).Encode"}, Form: FormCheck, Comment: "Error encoding response"},
			input: "func h(w http.ResponseWriter) {\n\tjson.NewEncoder(w).Encode(resp)\n}\n",
			want:  "func h(w http.ResponseWriter) {\n\tif err := json.NewEncoder(w).Encode(resp); err != nil {\n\t\t// Error encoding response\n\t}\n}\n",
		},
		{
			name:  "explicit check form with two results",
			rule:  &Rule{Name: "write-check", Callees: []string{"f.WriteString"}, Results: 2, Form: FormCheck, Comment: "nothing to do"},
			input: "\tf.WriteString(s)\n",
			want:  "\tif _, err := f.WriteString(s); err != nil {\n\t\t// nothing to do\n\t}\n",
		},
		{
			name:  "call spanning lines",
			rule:  &Rule{Name: "mock", Callees: []string{"mockSvc.Send*Email"}, Comment: "Best-effort mock in test"},
			input: "\tmockSvc.SendOrganizationInvitationEmail(\n\t\t\"a@example.com\",\n\t\t\"Org\",\n\t)\n\tnext()\n",
			want:  "\t_ = mockSvc.SendOrganizationInvitationEmail(\n\t\t\"a@example.com\",\n\t\t\"Org\",\n\t) // Best-effort mock in test\n\tnext()\n",
		},
		{
			name:  "wildcard receiver",
			rule:  &Rule{Name: "pool", Callees: []string{"*.pool.Close"}, Comment: "Best-effort close"},
			input: "\tm.pool.Close()\n\tpool.Close()\n",
			want:  "\t_ = m.pool.Close() // Best-effort close\n\tpool.Close()\n",
		},
		{
			name:  "crlf line endings",
			rule:  &Rule{Name: "json", Callees: []string{"json.NewEncoder(w).Encode"}, Form: FormCheck, Comment: "ignored"},
			input: "{\r\n\tjson.NewEncoder(w).Encode(v)\r\n}\r\n",
			want:  "{\r\n\tif err := json.NewEncoder(w).Encode(v); err != nil {\r\n\t\t// ignored\r\n\t}\r\n}\r\n",
		},
		{
			name:  "parentheses inside strings",
			rule:  &Rule{Name: "sscanf", Callees: []string{"fmt.Sscanf"}, Results: 2, Comment: "Best-effort parsing"},
			input: "\tfmt.Sscanf(s, \"(%d)\", &n)\n",
			want:  "\t_, _ = fmt.Sscanf(s, \"(%d)\", &n) // Best-effort parsing\n",
		},
		{
			name:  "no trailing newline",
			rule:  &Rule{Name: "close", Callees: []string{"db.Close"}, Comment: "Best-effort close"},
			input: "\tdb.Close()",
			want:  "\t_ = db.Close() // Best-effort close",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.NoError(t, tt.rule.Compile())

			got := tt.rule.Apply(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, tt.rule.Apply(got), "second application must not change the text")
		})
	}
}

func TestRuleApplyLeavesNonMatchesAlone(t *testing.T) {
	t.Parallel()
	closeRule := (&Rule{Name: "close", Callees: []string{"conn.Close", "rows.Close"}, Comment: "Best-effort close"}).MustCompile()
	deferRule := (&Rule{Name: "defer-close", Callees: []string{"rows.Close"}, Deferred: true, Form: FormDeferDiscard, Comment: "Best-effort close"}).MustCompile()

	inputs := map[string]string{
		"empty":                  "",
		"no calls":               "package main\n\nfunc main() {}\n",
		"result assigned":        "\terr := conn.Close()\n",
		"result returned":        "\treturn conn.Close()\n",
		"result checked":         "\tif err := conn.Close(); err != nil {\n\t\treturn err\n\t}\n",
		"already discarded":      "\t_ = conn.Close() // Best-effort close\n",
		"already wrapped defer":  "\tdefer func() { _ = rows.Close() }() // Best-effort close\n",
		"call used as argument":  "\tlog(\n\t\tconn.Close(),\n\t)\n",
		"method chained":         "\tconn.Close().Error()\n",
		"other receiver":         "\tmyconn.Close()\n\tconn.CloseWrite()\n",
		"inside raw string":      "\tsrc := `\n\tconn.Close()\n\tdefer rows.Close()\n`\n",
		"inside block comment":   "/*\n\tconn.Close()\n\tdefer rows.Close()\n*/\n",
		"inside line comment":    "\t// conn.Close()\n",
		"expression continues":   "\tok := ready &&\n\t\tconn.Close()\n",
		"unbalanced call":        "\tconn.Close(\n",
		"two statements on line": "\tconn.Close(); x++\n",
		"nolint trailing":        "\tconn.Close() //nolint:errcheck\n\tdefer rows.Close() //nolint\n",
		"nolint on line above":   "\t//nolint:errcheck\n\tconn.Close()\n",
		"deferred for immediate": "\tdefer conn.Close()\n",
	}

	for name, input := range inputs {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, input, closeRule.Apply(input))
			assert.Equal(t, input, deferRule.Apply(input))
		})
	}
}

func TestRuleApplyAfterIncrement(t *testing.T) {
	t.Parallel()
	r := (&Rule{Name: "close", Callees: []string{"conn.Close"}, Comment: "c"}).MustCompile()

	got := r.Apply("\ti++\n\tconn.Close()\n")
	assert.Equal(t, "\ti++\n\t_ = conn.Close() // c\n", got)
}

func TestRuleCompile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		rule    *Rule
		wantErr bool
	}{
		{"valid", &Rule{Name: "ok", Callees: []string{"a.B"}}, false},
		{"missing name", &Rule{Callees: []string{"a.B"}}, true},
		{"no callees", &Rule{Name: "x"}, true},
		{"negative results", &Rule{Name: "x", Callees: []string{"a.B"}, Results: -1}, true},
		{"deferred without defer form", &Rule{Name: "x", Callees: []string{"a.B"}, Deferred: true}, true},
		{"defer form without deferred", &Rule{Name: "x", Callees: []string{"a.B"}, Form: FormDeferDiscard}, true},
		{"check without comment", &Rule{Name: "x", Callees: []string{"a.B"}, Form: FormCheck}, true},
		{"callee with call", &Rule{Name: "x", Callees: []string{"a.B()"}}, true},
		{"callee with blanks", &Rule{Name: "x", Callees: []string{"a. B"}}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.rule.Compile()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRule)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 1, tt.rule.Results)
		})
	}
}

func TestRuleMatch(t *testing.T) {
	t.Parallel()
	r := (&Rule{Name: "store", Callees: []string{"s.store.Update*Failed"}, Comment: "c"}).MustCompile()

	assert.True(t, r.Match("s.store.UpdateBackupFailed(ctx, id)"))
	assert.True(t, r.Match("s.store.UpdateRequestFailed(ctx, id)"))
	assert.False(t, r.Match("s.store.UpdateBackup(ctx, id)"))
	assert.False(t, r.Match("_ = s.store.UpdateBackupFailed(ctx, id)"))
	assert.False(t, (&Rule{Name: "uncompiled", Callees: []string{"a.B"}}).Match("a.B()"))
}

func TestParseForm(t *testing.T) {
	t.Parallel()
	for _, f := range []Form{FormDiscard, FormDeferDiscard, FormCheck} {
		got, err := ParseForm(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseForm("")
	require.NoError(t, err)
	assert.Equal(t, FormDiscard, got)

	_, err = ParseForm("panic")
	assert.Error(t, err)
}

func TestAcknowledged(t *testing.T) {
	t.Parallel()
	assert.True(t, Acknowledged("_ = conn.Close()"))
	assert.True(t, Acknowledged("\t_, _ = io.Copy(a, b)"))
	assert.True(t, Acknowledged("defer func() { _ = rows.Close() }()"))
	assert.True(t, Acknowledged("if err := enc.Encode(v); err != nil {"))
	assert.False(t, Acknowledged("conn.Close()"))
	assert.False(t, Acknowledged("defer rows.Close()"))
	assert.False(t, Acknowledged("_x = 1"))
}
