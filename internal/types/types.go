package types

import "fmt"

// FixOutcome represents the result of processing a single file.
type FixOutcome struct {
	Path     string
	Modified bool
	// Cached is set when the file was known to be clean and the rules were not run.
	Cached bool
}

// ErrorRecord names a file that could not be read or written, and why.
type ErrorRecord struct {
	Path string
	Err  error
}

func (e *ErrorRecord) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ErrorRecord) Unwrap() error {
	return e.Err
}

// Summary aggregates the outcomes of one run over a tree.
type Summary struct {
	Discovered int
	Fixed      int
	Cached     int
	Errors     []ErrorRecord
	DryRun     bool
}
