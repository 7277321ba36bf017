package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	tt "github.com/gnolang/errfix/internal/types"
)

// VerifyAdvice is printed after every run.
const VerifyAdvice = "Run 'golangci-lint run --enable-only=errcheck ./...' to verify"

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	summaryStyle = color.New(color.FgGreen, color.Bold)
	adviceStyle  = color.New(color.FgYellow)
)

// ConsoleReporter prints a run the way a person at a terminal reads it.
type ConsoleReporter struct {
	out    io.Writer
	errOut io.Writer
	dryRun bool
}

// NewConsoleReporter writes progress to out and failures to errOut.
// Nil writers default to stdout and stderr.
func NewConsoleReporter(out, errOut io.Writer, dryRun bool) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &ConsoleReporter{out: out, errOut: errOut, dryRun: dryRun}
}

func (r *ConsoleReporter) Discovered(n int) {
	fmt.Fprintf(r.out, "Found %d Go files\n", n)
	fmt.Fprintln(r.out, "Applying errcheck fixes...")
}

func (r *ConsoleReporter) Fixed(path string) {
	verb := "Fixed: "
	if r.dryRun {
		verb = "Would fix: "
	}
	fmt.Fprintln(r.out, verb+fileStyle.Sprint(path))
}

func (r *ConsoleReporter) Failed(rec tt.ErrorRecord) {
	errorStyle.Fprintf(r.errOut, "Error processing %s: %v\n", rec.Path, rec.Err)
}

func (r *ConsoleReporter) Summary(summary tt.Summary) {
	verb := "Fixed"
	if summary.DryRun {
		verb = "Would fix"
	}
	fmt.Fprintln(r.out)
	summaryStyle.Fprintf(r.out, "%s %d files\n", verb, summary.Fixed)
	fmt.Fprintln(r.out)
	adviceStyle.Fprintln(r.out, VerifyAdvice)
}
