package dispatching

import (
	"context"
	"time"
)

// Run describes one invocation of the dispatcher.
type Run struct {
	ID          string
	Source      string
	Destination string
	Format      string
	Mode        string
	DryRun      bool
	StartedAt   time.Time
}

// Recorder keeps a journal of dispatch results. Failures to record are
// logged and never affect a dispatch.
type Recorder interface {
	StartRun(ctx context.Context, run Run) error
	Record(ctx context.Context, runID string, result Result) error
	FinishRun(ctx context.Context, runID string, summary Summary) error
}

// Observer is notified of every result, e.g. to update metrics.
type Observer interface {
	Observe(result Result)
}
