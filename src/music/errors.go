package music

import (
	"errors"
	"fmt"
)

// ErrPathConflict means a path component exists but is not a directory.
var ErrPathConflict = errors.New("path exists and is not a directory")

// SourceCleanupError is returned by a move that copied the file but could
// not delete the source. The destination is complete; both copies remain.
type SourceCleanupError struct {
	Source      string
	Destination string
	Err         error
}

func (e *SourceCleanupError) Error() string {
	return fmt.Sprintf("copied %s to %s but failed to remove source: %v", e.Source, e.Destination, e.Err)
}

func (e *SourceCleanupError) Unwrap() error {
	return e.Err
}
