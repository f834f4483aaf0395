package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirMode is used for every directory the dispatcher creates.
const DirMode os.FileMode = 0o700

// EnsureDirectoryExists creates every missing ancestor directory of the file
// at path. It is idempotent and safe to call concurrently for overlapping
// paths.
func EnsureDirectoryExists(path string) error {
	return EnsureDirectory(filepath.Dir(path))
}

// EnsureDirectory creates dir and its missing parents, walking from the root
// downward. An existing non-directory component fails with ErrPathConflict.
func EnsureDirectory(dir string) error {
	dir = filepath.Clean(dir)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return nil
	}

	var chain []string
	for p := dir; ; {
		chain = append(chain, p)
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		p = parent
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if err := mkdirOne(chain[i]); err != nil {
			return err
		}
	}
	return nil
}

func mkdirOne(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return &IOError{Op: "mkdir", Path: path, Err: ErrPathConflict}
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "stat", Path: path, Err: err}
	}

	if err := os.Mkdir(path, DirMode); err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Another worker created it between Stat and Mkdir.
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				return nil
			}
			return &IOError{Op: "mkdir", Path: path, Err: ErrPathConflict}
		}
		return &IOError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// removeEmptyDirectories removes dir and then its parents while they are
// empty, stopping at root (which is never removed).
func removeEmptyDirectories(dir, root string) error {
	dir = filepath.Clean(dir)
	root = filepath.Clean(root)
	for dir != root {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return &IOError{Op: "readdir", Path: dir, Err: err}
		}
		if len(entries) > 0 {
			return nil
		}
		if err := os.Remove(dir); err != nil {
			return &IOError{Op: "rmdir", Path: dir, Err: err}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
	return nil
}
