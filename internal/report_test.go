package internal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	tt "github.com/gnolang/errfix/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestConsoleReporter(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name    string
		dryRun  bool
		wantOut string
	}{
		{
			name:   "write",
			dryRun: false,
			wantOut: "Found 3 Go files\n" +
				"Applying errcheck fixes...\n" +
				"Fixed: a.go\n" +
				"\nFixed 1 files\n" +
				"\n" + VerifyAdvice + "\n",
		},
		{
			name:   "dry run",
			dryRun: true,
			wantOut: "Found 3 Go files\n" +
				"Applying errcheck fixes...\n" +
				"Would fix: a.go\n" +
				"\nWould fix 1 files\n" +
				"\n" + VerifyAdvice + "\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			r := NewConsoleReporter(&out, &errOut, tc.dryRun)

			r.Discovered(3)
			r.Fixed("a.go")
			r.Failed(tt.ErrorRecord{Path: "b.go", Err: errors.New("permission denied")})
			r.Summary(tt.Summary{Discovered: 3, Fixed: 1, DryRun: tc.dryRun})

			assert.Equal(t, tc.wantOut, out.String())
			assert.Equal(t, "Error processing b.go: permission denied\n", errOut.String())
		})
	}
}
