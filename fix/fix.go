package fix

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnolang/errfix/internal"
	tt "github.com/gnolang/errfix/internal/types"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// FixEngine is the part of the engine a Runner drives.
type FixEngine interface {
	ProcessTree(ctx context.Context, root string) (tt.Summary, error)
	IgnoreRule(rule string)
}

// Runner fixes one root with the engine and file system built from a Config.
type Runner struct {
	Config Config
	Root   string
	Engine *internal.Engine
	FS     *internal.OSFileSystem

	logger *zap.Logger
	cache  *internal.Cache
}

// New builds a runner for root from cfg. Output goes through reporter.
func New(root string, cfg Config, reporter internal.Reporter, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	fs, err := internal.NewOSFileSystem(cfg.Extension, cfg.Ignore)
	if err != nil {
		return nil, err
	}

	return &Runner{
		Config: cfg,
		Root:   root,
		Engine: internal.NewEngine(catalog, fs, reporter, logger),
		FS:     fs,
		logger: logger,
	}, nil
}

// IgnorePath excludes paths matching pattern from the run.
func (r *Runner) IgnorePath(pattern string) error {
	return r.FS.IgnorePath(pattern)
}

// DefaultCacheDir returns the per-root cache directory under the user cache.
func DefaultCacheDir(root string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(base, "errfix", fmt.Sprintf("%x", sum[:4])), nil
}

// EnableCache skips files a previous run with the same rules found clean.
func (r *Runner) EnableCache(dir string) error {
	cache, err := internal.NewCache(dir, r.Engine.Catalog().Fingerprint())
	if err != nil {
		return err
	}
	r.cache = cache
	r.Engine.SetCache(cache)
	return nil
}

// EnableProgress draws a progress bar on w while a tree is processed.
func (r *Runner) EnableProgress(w io.Writer) {
	bar := progressbar.NewOptions(0,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(r.Root),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	r.Engine.SetProgress(bar)
}

// Run fixes the whole root under the per-root lock.
func (r *Runner) Run(ctx context.Context) (tt.Summary, error) {
	release, err := acquireLock(r.Root)
	if err != nil {
		return tt.Summary{}, err
	}
	defer release()

	summary, err := ProcessTree(ctx, r.logger, r.Engine, r.Root)
	r.saveCache()
	return summary, err
}

// Watch keeps the root fixed until ctx is done.
func (r *Runner) Watch(ctx context.Context) error {
	release, err := acquireLock(r.Root)
	if err != nil {
		return err
	}
	defer release()
	defer r.saveCache()

	w, err := internal.NewWatcher(r.Engine, r.FS, r.logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return w.Watch(ctx, r.Root)
}

func (r *Runner) saveCache() {
	if r.cache == nil {
		return
	}
	if err := r.cache.Save(); err != nil {
		r.logger.Warn("failed to save cache", zap.Error(err))
	}
}

// IgnoreRules drops every rule named in a comma-separated list.
func IgnoreRules(engine FixEngine, list string) {
	for _, rule := range strings.Split(list, ",") {
		if rule = strings.TrimSpace(rule); rule != "" {
			engine.IgnoreRule(rule)
		}
	}
}

// ProcessTree runs engine over root and logs a failed run.
func ProcessTree(ctx context.Context, logger *zap.Logger, engine FixEngine, root string) (tt.Summary, error) {
	summary, err := engine.ProcessTree(ctx, root)
	if err != nil && logger != nil {
		logger.Error("Error processing root", zap.String("root", root), zap.Error(err))
	}
	return summary, err
}
