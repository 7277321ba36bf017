package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gnolang/errfix/internal/rules"
	tt "github.com/gnolang/errfix/internal/types"
	"go.uber.org/zap"
)

// ErrNotText is recorded for files that are not UTF-8 text.
var ErrNotText = errors.New("not a UTF-8 text file")

// FileSystem lists, reads and writes the files the engine rewrites.
type FileSystem interface {
	// Discover returns every file under root that should be processed, in a
	// stable order. Entries that could not be listed are returned as records;
	// the error is reserved for an unusable root.
	Discover(root string) ([]string, []tt.ErrorRecord, error)
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces the whole content of an existing file.
	WriteFile(path string, data []byte) error
}

// Reporter receives the progress of a run.
type Reporter interface {
	Discovered(n int)
	Fixed(path string)
	Failed(rec tt.ErrorRecord)
	Summary(summary tt.Summary)
}

// Progress is advanced once per processed file.
type Progress interface {
	ChangeMax(max int)
	Add(n int) error
}

// Engine applies a rule catalog to files, one file at a time.
type Engine struct {
	catalog  rules.Catalog
	fs       FileSystem
	reporter Reporter
	logger   *zap.Logger

	cache    *Cache
	progress Progress
	dryRun   bool
}

// NewEngine creates a rewrite engine. A nil logger discards log output.
func NewEngine(catalog rules.Catalog, fs FileSystem, reporter Reporter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:  catalog,
		fs:       fs,
		reporter: reporter,
		logger:   logger,
	}
}

// Catalog returns the rules the engine currently applies.
func (e *Engine) Catalog() rules.Catalog {
	return e.catalog
}

// IgnoreRule removes the named rule from the catalog.
func (e *Engine) IgnoreRule(rule string) {
	if e.catalog.Lookup(rule) == nil {
		e.logger.Warn("ignoring unknown rule", zap.String("rule", rule))
		return
	}
	e.catalog = e.catalog.Without(rule)
}

// SetDryRun makes the engine report fixes without writing them.
func (e *Engine) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// SetCache enables skipping files recorded as clean by a previous run.
func (e *Engine) SetCache(cache *Cache) {
	e.cache = cache
}

// SetProgress attaches a progress indicator to ProcessTree.
func (e *Engine) SetProgress(progress Progress) {
	e.progress = progress
}

// ProcessSource applies the catalog to src. It reports whether the text changed.
func (e *Engine) ProcessSource(src []byte) ([]byte, bool) {
	text := string(src)
	fixed := e.catalog.Apply(text)
	if fixed == text {
		return src, false
	}
	return []byte(fixed), true
}

// ProcessFile rewrites a single file in place.
// Failures are returned as *types.ErrorRecord and are also reported.
func (e *Engine) ProcessFile(path string) (tt.FixOutcome, error) {
	outcome, err := e.processFile(path)
	if err != nil {
		rec := &tt.ErrorRecord{Path: path, Err: err}
		e.logger.Debug("file failed", zap.String("path", path), zap.Error(err))
		e.reporter.Failed(*rec)
		return outcome, rec
	}
	if outcome.Modified {
		e.reporter.Fixed(path)
	}
	return outcome, nil
}

func (e *Engine) processFile(path string) (tt.FixOutcome, error) {
	outcome := tt.FixOutcome{Path: path}

	src, err := e.fs.ReadFile(path)
	if err != nil {
		return outcome, err
	}
	if !isText(src) {
		return outcome, ErrNotText
	}

	var hash string
	if e.cache != nil {
		hash = HashContent(src)
		if e.cache.Clean(path, hash) {
			outcome.Cached = true
			e.logger.Debug("cache hit", zap.String("path", path))
			return outcome, nil
		}
	}

	fixed, changed := e.ProcessSource(src)
	if !changed {
		e.remember(path, hash)
		return outcome, nil
	}

	if !e.dryRun {
		if err := e.fs.WriteFile(path, fixed); err != nil {
			return outcome, err
		}
		e.remember(path, HashContent(fixed))
	}
	outcome.Modified = true
	e.logger.Debug("file fixed", zap.String("path", path), zap.Bool("dry_run", e.dryRun))
	return outcome, nil
}

func (e *Engine) remember(path, hash string) {
	if e.cache == nil || hash == "" {
		return
	}
	e.cache.Record(path, hash)
}

// ProcessTree fixes every file under root. A failing file is recorded and
// the run moves on; only an unusable root or a cancelled context stops it.
// Files fixed before a cancellation stay fixed.
func (e *Engine) ProcessTree(ctx context.Context, root string) (tt.Summary, error) {
	summary := tt.Summary{DryRun: e.dryRun}

	paths, skipped, err := e.fs.Discover(root)
	if err != nil {
		return summary, fmt.Errorf("error discovering files in %s: %w", root, err)
	}
	summary.Discovered = len(paths)
	e.reporter.Discovered(len(paths))
	e.logger.Info("files discovered", zap.String("root", root), zap.Int("count", len(paths)))

	for _, rec := range skipped {
		e.reporter.Failed(rec)
		summary.Errors = append(summary.Errors, rec)
	}

	if e.progress != nil {
		e.progress.ChangeMax(len(paths))
	}

	for _, path := range paths {
		if err = ctx.Err(); err != nil {
			break
		}

		outcome, ferr := e.ProcessFile(path)
		if ferr != nil {
			var rec *tt.ErrorRecord
			if !errors.As(ferr, &rec) {
				rec = &tt.ErrorRecord{Path: path, Err: ferr}
			}
			summary.Errors = append(summary.Errors, *rec)
		}
		if outcome.Modified {
			summary.Fixed++
		}
		if outcome.Cached {
			summary.Cached++
		}
		if e.progress != nil {
			_ = e.progress.Add(1)
		}
	}

	e.reporter.Summary(summary)
	e.logger.Info("run finished",
		zap.Int("fixed", summary.Fixed),
		zap.Int("cached", summary.Cached),
		zap.Int("errors", len(summary.Errors)))
	return summary, err
}

func isText(src []byte) bool {
	return bytes.IndexByte(src, 0) < 0 && utf8.Valid(src)
}
