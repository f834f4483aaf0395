package dispatching

import (
	"context"

	"github.com/contre95/dispatch/src/music"
)

// FileOrganizer places files in the destination tree.
type FileOrganizer interface {
	// EnsureLibrary makes sure the destination root is a usable directory.
	EnsureLibrary() error
	// LibraryPath returns the destination root.
	LibraryPath() string
	// GetLibraryPath renders the template and assembles the final path without touching the filesystem.
	GetLibraryPath(meta music.Metadata, ext string) string
	// PrepareDirectory creates every missing ancestor directory of dst.
	PrepareDirectory(dst string) error
	// Transfer copies or moves src to dst, returning the number of bytes placed.
	Transfer(ctx context.Context, src, dst string, mode music.TransferMode) (int64, error)
	// PruneEmptyDirectories removes directories left empty by a move, up to root.
	PruneEmptyDirectories(dir, root string) error
}

// Walker discovers candidate files under a source root.
type Walker interface {
	// Walk calls fn for every entry under root in lexical order. An error
	// returned by fn stops the walk.
	Walk(ctx context.Context, root string, fn func(path string, kind music.FileKind) error) error
	// Check verifies that root is a readable directory without walking it.
	Check(root string) error
	// Classify reports the kind of a single path.
	Classify(path string) music.FileKind
}

// TagReader is the external tag service.
type TagReader interface {
	ReadMetadata(ctx context.Context, path string) (music.Metadata, error)
}
