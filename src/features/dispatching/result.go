package dispatching

import (
	"fmt"
	"time"

	"github.com/contre95/dispatch/src/music"
)

// Outcome is the terminal state of a dispatch.
type Outcome int

const (
	Skipped Outcome = iota
	Transferred
	Failed
	// Planned is what Transferred becomes in a dry run.
	Planned
)

func (o Outcome) String() string {
	switch o {
	case Transferred:
		return "transferred"
	case Failed:
		return "failed"
	case Planned:
		return "planned"
	default:
		return "skipped"
	}
}

// Stage is the last state a dispatch reached.
type Stage string

const (
	StageDiscovered      Stage = "discovered"
	StageFiltered        Stage = "filtered"
	StageMetadataFetched Stage = "metadata_fetched"
	StageAssembled       Stage = "assembled"
	StageDirectoryReady  Stage = "directory_ready"
	StageTransferred     Stage = "transferred"
)

// Skip reasons.
const (
	SkipNotRegular          = "not_regular_file"
	SkipNoExtension         = "no_extension"
	SkipDisallowedExtension = "disallowed_extension"
	SkipMetadataUnreadable  = "metadata_unreadable"
	SkipInsideDestination   = "inside_destination"
	SkipAlreadyInPlace      = "already_in_place"
)

// Failure reasons.
const (
	FailDirectoryConflict = "directory_conflict"
	FailDirectory         = "directory_error"
	FailTransfer          = "transfer_error"
	FailPanic             = "internal_error"
)

// Result is the per-file outcome of Dispatch.
type Result struct {
	Outcome     Outcome
	Stage       Stage
	Reason      string
	Source      string
	Destination string
	Kind        music.FileKind
	Metadata    music.Metadata
	Bytes       int64
	Duration    time.Duration
	// Err is the failure cause, the tag error behind a metadata skip, or a
	// warning attached to a Transferred result.
	Err error
}

// Warning reports a transfer that completed with a non-fatal problem, such as
// a source that could not be removed after a copy.
func (r Result) Warning() bool {
	return r.Outcome == Transferred && r.Err != nil
}

func (r Result) String() string {
	switch r.Outcome {
	case Transferred, Planned:
		return fmt.Sprintf("%s %s -> %s", r.Outcome, r.Source, r.Destination)
	case Failed:
		return fmt.Sprintf("failed %s -> %s (%s): %v", r.Source, r.Destination, r.Reason, r.Err)
	default:
		return fmt.Sprintf("skipped %s (%s)", r.Source, r.Reason)
	}
}

func (r Result) skip(reason string) Result {
	r.Outcome = Skipped
	r.Reason = reason
	return r
}

func (r Result) fail(reason string, err error) Result {
	r.Outcome = Failed
	r.Reason = reason
	r.Err = err
	return r
}

// StructuralError aborts a run before any file is touched.
type StructuralError struct {
	Op  string
	Err error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}
