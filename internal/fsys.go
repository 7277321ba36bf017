package internal

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	tt "github.com/gnolang/errfix/internal/types"
)

// DefaultIgnore keeps vendored code and repository metadata out of a run.
var DefaultIgnore = []string{"**/vendor/**", "**/.git/**"}

// OSFileSystem is the FileSystem backed by the local disk.
type OSFileSystem struct {
	extension string
	ignore    []string
}

// NewOSFileSystem returns a file system that discovers files ending in
// extension and skips paths matching any of the ignore globs. Globs use
// doublestar syntax and are matched against slash-separated paths relative
// to the discovery root.
func NewOSFileSystem(extension string, ignore []string) (*OSFileSystem, error) {
	if extension == "" {
		extension = ".go"
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return &OSFileSystem{
		extension: extension,
		ignore:    slices.Clone(ignore),
	}, nil
}

// IgnorePath adds a glob to the ignore list.
func (f *OSFileSystem) IgnorePath(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid ignore pattern %q", pattern)
	}
	f.ignore = append(f.ignore, pattern)
	return nil
}

// Extension returns the file extension that Discover looks for.
func (f *OSFileSystem) Extension() string {
	return f.extension
}

func (f *OSFileSystem) Discover(root string) ([]string, []tt.ErrorRecord, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		if f.Wants(filepath.Dir(root), root) {
			return []string{root}, nil, nil
		}
		return nil, nil, nil
	}

	var (
		paths   []string
		skipped []tt.ErrorRecord
	)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			skipped = append(skipped, tt.ErrorRecord{Path: path, Err: err})
			return nil
		}
		if d.IsDir() {
			if path != root && f.ignored(root, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && f.Wants(root, path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paths, skipped, nil
}

// Dirs lists root and every directory below it that is not ignored.
func (f *OSFileSystem) Dirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && f.ignored(root, path) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

// Wants reports whether path, found under root, is a file to process.
func (f *OSFileSystem) Wants(root, path string) bool {
	return filepath.Ext(path) == f.extension && !f.ignored(root, path)
}

func (f *OSFileSystem) ignored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range f.ignore {
		// a directory pattern ending in /** also covers the directory itself
		if match(pattern, rel) || match(pattern, rel+"/_") {
			return true
		}
	}
	return false
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

func (f *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile replaces the file through a temporary sibling, so the file is
// either fully old or fully new. The original permission bits are kept.
func (f *OSFileSystem) WriteFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".errfix-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // no-op after the rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
