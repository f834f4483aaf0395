package files

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/contre95/dispatch/src/music"
)

// FileOrganizer is the infrastructure implementation of dispatching.FileOrganizer.
type FileOrganizer struct {
	libraryPath string
	template    *Template
	transferer  *Transferer
}

// NewFileOrganizer creates a new file organizer rooted at libraryPath.
func NewFileOrganizer(libraryPath string, template *Template, transferer *Transferer) *FileOrganizer {
	return &FileOrganizer{libraryPath: libraryPath, template: template, transferer: transferer}
}

// AssemblePath joins the destination root, a rendered fragment and the
// extension. An empty fragment yields a file named ".<ext>" at the root.
func AssemblePath(destRoot, fragment, ext string) string {
	root := strings.TrimRight(destRoot, "/")
	return root + "/" + fragment + "." + ext
}

// LibraryPath returns the destination root.
func (o *FileOrganizer) LibraryPath() string {
	return o.libraryPath
}

// EnsureLibrary makes sure the destination root is a usable directory.
func (o *FileOrganizer) EnsureLibrary() error {
	if strings.TrimSpace(o.libraryPath) == "" {
		return fmt.Errorf("destination root is empty")
	}
	if err := EnsureDirectory(o.libraryPath); err != nil {
		return fmt.Errorf("failed to prepare destination root: %w", err)
	}
	return nil
}

// GetLibraryPath generates the destination path for a file without touching it.
func (o *FileOrganizer) GetLibraryPath(meta music.Metadata, ext string) string {
	return AssemblePath(o.libraryPath, o.template.Render(meta), ext)
}

// PrepareDirectory creates the missing ancestors of dst.
func (o *FileOrganizer) PrepareDirectory(dst string) error {
	return EnsureDirectoryExists(dst)
}

// Transfer copies or moves src to dst and returns the number of bytes placed.
func (o *FileOrganizer) Transfer(ctx context.Context, src, dst string, mode music.TransferMode) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, &IOError{Op: "stat", Path: src, Err: err}
	}
	if err := o.transferer.Transfer(src, dst, mode); err != nil {
		var cleanupErr *SourceCleanupError
		if errors.As(err, &cleanupErr) {
			return info.Size(), err
		}
		return 0, err
	}
	return info.Size(), nil
}

// PruneEmptyDirectories removes directories left empty by a move, from dir up
// to (not including) root.
func (o *FileOrganizer) PruneEmptyDirectories(dir, root string) error {
	if filepath.Clean(dir) == filepath.Clean(o.libraryPath) {
		return nil
	}
	return removeEmptyDirectories(dir, root)
}
