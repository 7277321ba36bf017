// Package internal provides the rewrite engine behind errfix.
//
// The engine applies an ordered rule catalog (see internal/rules) to Go
// source files, one file at a time. A file is read whole, every rule runs over
// the text produced by the rules before it, and the file is written back only
// when its bytes changed. A file that cannot be read, is not UTF-8 text, or
// cannot be written produces an error record and the run moves on to the next
// file.
//
// Key components:
//
// Engine: coordinates a run. ProcessFile fixes one file, ProcessTree fixes
// every file a FileSystem discovers under a root and reports a Summary.
//
// FileSystem: lists, reads and writes files. OSFileSystem walks the disk,
// filters by extension and skips doublestar ignore globs.
//
// Reporter: receives the events of a run. ConsoleReporter prints them.
//
// Cache: remembers files the current catalog leaves unchanged.
//
// Watcher: re-runs ProcessFile for files written while it is running.
//
// Usage:
//
//	fs, err := internal.NewOSFileSystem(".go", internal.DefaultIgnore)
//	if err != nil {
//	    // handle error
//	}
//
//	engine := internal.NewEngine(rules.DefaultCatalog(), fs, internal.NewConsoleReporter(nil, nil, false), logger)
//	summary, err := engine.ProcessTree(ctx, root)
//	if err != nil {
//	    // the root could not be walked, or ctx was cancelled
//	}
//
// This package is intended for internal use within errfix and should not be
// imported by external packages.
package internal
