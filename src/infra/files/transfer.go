package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/contre95/dispatch/src/music"
	"github.com/google/uuid"
)

// copyStrategy moves size bytes from src to dst. Both files are positioned
// at offset zero.
type copyStrategy interface {
	Name() string
	copy(dst, src *os.File, size int64) (int64, error)
}

// Transferer copies or moves single files. The bulk copy strategy is picked
// once, at construction, from what the platform supports.
type Transferer struct {
	strategy copyStrategy
	locks    *PathLocker
	logger   *slog.Logger
	// filesystem calls used by move
	rename func(oldpath, newpath string) error
	remove func(name string) error
}

// NewTransferer creates a Transferer using the best strategy for this platform.
func NewTransferer(logger *slog.Logger) *Transferer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transferer{
		strategy: platformStrategy(),
		locks:    NewPathLocker(),
		logger:   logger,
		rename:   os.Rename,
		remove:   os.Remove,
	}
}

// Strategy names the bulk copy strategy in use.
func (t *Transferer) Strategy() string {
	return t.strategy.Name()
}

// Transfer puts the bytes of src at dst. Concurrent transfers into the same
// destination are serialized.
func (t *Transferer) Transfer(src, dst string, mode music.TransferMode) error {
	unlock := t.locks.Lock(dst)
	defer unlock()

	if mode == music.Move {
		return t.move(src, dst)
	}
	return t.copyFile(src, dst)
}

// move renames when it can and falls back to copy+delete otherwise. A failed
// delete leaves both files in place and returns a SourceCleanupError.
func (t *Transferer) move(src, dst string) error {
	renameErr := t.rename(src, dst)
	if renameErr == nil {
		return nil
	}
	t.logger.Debug("Transferer.move: rename failed, falling back to copy", "src", src, "dst", dst, "error", renameErr)

	if err := t.copyFile(src, dst); err != nil {
		return err
	}
	if err := t.remove(src); err != nil {
		return &SourceCleanupError{Source: src, Destination: dst, Err: err}
	}
	return nil
}

// copyFile writes src into a fresh temporary file next to dst and renames it
// into place, so dst is never left half written.
func (t *Transferer) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return &IOError{Op: "stat", Path: src, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &IOError{Op: "open", Path: src, Err: errNotRegular}
	}

	tmpPath := filepath.Join(filepath.Dir(dst), fmt.Sprintf(".%s.%s.part", filepath.Base(dst), uuid.NewString()[:8]))
	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return &IOError{Op: "create", Path: dst, Err: err}
	}

	fail := func(op string, err error) error {
		out.Close()
		os.Remove(tmpPath)
		return &IOError{Op: op, Path: dst, Err: err}
	}

	written, err := t.strategy.copy(out, in, info.Size())
	if err != nil {
		return fail("copy", err)
	}
	if written != info.Size() {
		return fail("copy", fmt.Errorf("short copy: wrote %d of %d bytes", written, info.Size()))
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		return fail("chmod", err)
	}
	if err := out.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "close", Path: dst, Err: err}
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "rename", Path: dst, Err: err}
	}

	t.logger.Debug("Transferer.copyFile: copied", "src", src, "dst", dst, "bytes", written, "strategy", t.strategy.Name())
	return nil
}
