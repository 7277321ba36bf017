package internal

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultSettleDelay = 100 * time.Millisecond

// Watcher re-fixes files under a root as they are written.
type Watcher struct {
	engine  *Engine
	fs      *OSFileSystem
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	delay   time.Duration
}

// NewWatcher prepares a watcher. Call Close when done.
func NewWatcher(engine *Engine, fs *OSFileSystem, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	return &Watcher{
		engine:  engine,
		fs:      fs,
		logger:  logger,
		watcher: w,
		delay:   defaultSettleDelay,
	}, nil
}

// SetDelay sets how long the watcher waits for writes to settle before
// processing the files that changed.
func (w *Watcher) SetDelay(delay time.Duration) {
	w.delay = delay
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch blocks until ctx is done. Changed files are processed one at a time,
// in path order, once no write has been seen for the settle delay.
func (w *Watcher) Watch(ctx context.Context, root string) error {
	dirs, err := w.fs.Dirs(root)
	if err != nil {
		return fmt.Errorf("error listing directories: %w", err)
	}
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	w.logger.Info("watching", zap.String("root", root), zap.Int("dirs", len(dirs)))

	pending := make(map[string]struct{})
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(root, event, pending) {
				settle = time.After(w.delay)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-settle:
			settle = nil
			w.flush(pending)
		}
	}
}

// handleEvent records a changed file and starts watching new directories.
// It reports whether a file was queued.
func (w *Watcher) handleEvent(root string, event fsnotify.Event, pending map[string]struct{}) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.fs.ignored(root, event.Name) {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.Warn("cannot watch directory", zap.String("path", event.Name), zap.Error(err))
				}
			}
			return false
		}
	}

	if !w.fs.Wants(root, event.Name) {
		return false
	}
	pending[event.Name] = struct{}{}
	return true
}

func (w *Watcher) flush(pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	clear(pending)

	for _, path := range paths {
		outcome, err := w.engine.ProcessFile(path)
		if err != nil {
			continue
		}
		w.logger.Debug("processed", zap.String("path", path), zap.Bool("modified", outcome.Modified))
	}
}
