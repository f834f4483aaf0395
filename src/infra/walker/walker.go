package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/contre95/dispatch/src/music"
)

// FSWalker walks a directory tree on the local filesystem. Symlinks are
// reported but never followed.
type FSWalker struct {
	logger *slog.Logger
}

// NewFSWalker creates a new FSWalker.
func NewFSWalker(logger *slog.Logger) *FSWalker {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSWalker{logger: logger}
}

// Walk calls fn for every entry below root, in lexical order. A directory is
// reported before its contents, or as UnreadableDirectory (and not entered)
// when it cannot be listed. Only an unreadable root, a cancelled ctx or an
// error from fn stops the walk.
func (w *FSWalker) Walk(ctx context.Context, root string, fn func(path string, kind music.FileKind) error) error {
	entries, err := readRoot(root)
	if err != nil {
		return err
	}
	return w.walkEntries(ctx, root, entries, fn)
}

// Check reports whether root is a directory that can be listed.
func (w *FSWalker) Check(root string) error {
	_, err := readRoot(root)
	return err
}

func readRoot(root string) ([]fs.DirEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", root)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read source root: %w", err)
	}
	return entries, nil
}

func (w *FSWalker) walkEntries(ctx context.Context, dir string, entries []fs.DirEntry, fn func(path string, kind music.FileKind) error) error {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, entry.Name())
		if !entry.IsDir() {
			if err := fn(path, kindOf(path, entry.Type())); err != nil {
				return err
			}
			continue
		}

		children, err := os.ReadDir(path)
		if err != nil {
			w.logger.Debug("FSWalker.Walk: cannot read directory", "path", path, "error", err)
			if err := fn(path, music.UnreadableDirectory); err != nil {
				return err
			}
			continue
		}
		if err := fn(path, music.Directory); err != nil {
			return err
		}
		if err := w.walkEntries(ctx, path, children, fn); err != nil {
			return err
		}
	}
	return nil
}

// Classify reports the kind of a single path without following symlinks.
func (w *FSWalker) Classify(path string) music.FileKind {
	info, err := os.Lstat(path)
	if err != nil {
		return music.OtherFile
	}
	return kindOf(path, info.Mode().Type())
}

func kindOf(path string, mode fs.FileMode) music.FileKind {
	switch {
	case mode.IsRegular():
		return music.RegularFile
	case mode.IsDir():
		return music.Directory
	case mode&fs.ModeSymlink != 0:
		if _, err := os.Stat(path); err != nil && errors.Is(err, fs.ErrNotExist) {
			return music.DanglingSymlink
		}
		return music.Symlink
	default:
		return music.OtherFile
	}
}
