package files

import (
	"errors"
	"fmt"

	"github.com/contre95/dispatch/src/music"
)

// ErrPathConflict means a path component exists but is not a directory.
var ErrPathConflict = music.ErrPathConflict

// SourceCleanupError is the music.SourceCleanupError returned by moves.
type SourceCleanupError = music.SourceCleanupError

var errNotRegular = errors.New("not a regular file")

// IOError ties a filesystem failure to the path that caused it.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
