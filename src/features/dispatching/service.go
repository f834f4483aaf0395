package dispatching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/contre95/dispatch/src/music"
	"github.com/google/uuid"
)

// Options is the read-only configuration of a Service.
type Options struct {
	SourceRoot     string
	Format         string
	Mode           music.TransferMode
	DryRun         bool
	Workers        int
	PruneEmptyDirs bool
}

// Service dispatches media files from a source tree into a destination tree.
type Service struct {
	opts      Options
	walker    Walker
	tagReader TagReader
	organizer FileOrganizer
	recorder  Recorder
	observers []Observer
	logger    *slog.Logger
	stats     *Stats
	runID     string
}

// NewService creates a new dispatching service. recorder may be nil.
func NewService(opts Options, walker Walker, tagReader TagReader, organizer FileOrganizer, recorder Recorder, logger *slog.Logger, observers ...Observer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Service{
		opts:      opts,
		walker:    walker,
		tagReader: tagReader,
		organizer: organizer,
		recorder:  recorder,
		observers: observers,
		logger:    logger,
		stats:     NewStats(),
		runID:     uuid.New().String(),
	}
}

// RunID identifies this service's run in logs and the history journal.
func (s *Service) RunID() string {
	return s.runID
}

// Stats returns the totals accumulated so far.
func (s *Service) Stats() Summary {
	return s.stats.Snapshot()
}

// Run walks the source root and dispatches every entry. Per-file problems
// end up in the Summary; only structural problems are returned as errors.
// Cancelling ctx stops the walk but lets in-flight transfers finish.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	s.stats.setRunID(s.runID)

	if err := s.walker.Check(s.opts.SourceRoot); err != nil {
		return s.stats.Snapshot(), &StructuralError{Op: "source", Err: err}
	}
	if !s.opts.DryRun {
		if err := s.organizer.EnsureLibrary(); err != nil {
			return s.stats.Snapshot(), &StructuralError{Op: "destination", Err: err}
		}
	}
	if s.inside(s.opts.SourceRoot, s.organizer.LibraryPath()) {
		s.logger.Warn("Service.Run: destination root is inside the source root, its files will be skipped", "source", s.opts.SourceRoot, "destination", s.organizer.LibraryPath())
	}

	s.startRun(ctx)
	s.logger.Info("Service.Run: searching source tree", "run_id", s.runID, "source", s.opts.SourceRoot, "destination", s.organizer.LibraryPath(), "mode", s.opts.Mode.String(), "workers", s.opts.Workers, "dry_run", s.opts.DryRun)

	var walkErr error
	if s.opts.Workers > 1 {
		walkErr = s.runConcurrent(ctx)
	} else {
		walkErr = s.walker.Walk(ctx, s.opts.SourceRoot, func(path string, kind music.FileKind) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.Dispatch(ctx, path, kind)
			return nil
		})
	}

	interrupted := false
	if walkErr != nil {
		if !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
			return s.stats.Snapshot(), &StructuralError{Op: "source", Err: walkErr}
		}
		interrupted = true
		s.logger.Warn("Service.Run: interrupted, no new files will be dispatched", "run_id", s.runID)
	}

	summary := s.stats.Snapshot()
	summary.Interrupted = interrupted
	summary.Elapsed = time.Since(start)
	s.finishRun(ctx, summary)

	s.logger.Info("Service.Run: finished",
		"run_id", s.runID,
		"seen", summary.Seen,
		"transferred", summary.Transferred,
		"planned", summary.Planned,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"warnings", summary.Warnings,
		"elapsed", summary.Elapsed.Round(time.Millisecond).String(),
	)
	return summary, nil
}

// Dispatch handles one discovered entry end to end. It never panics and never
// returns an error: every problem is folded into the Result.
func (s *Service) Dispatch(ctx context.Context, path string, kind music.FileKind) (res Result) {
	start := time.Now()
	res = Result{Source: path, Kind: kind, Stage: StageDiscovered}
	defer func() {
		if r := recover(); r != nil {
			// res holds whatever stage was reached before the panic.
			res = res.fail(FailPanic, fmt.Errorf("panic: %v", r))
		}
		res.Duration = time.Since(start)
		s.complete(ctx, res)
	}()
	s.dispatch(ctx, &res)
	return res
}

// dispatch advances *res through the pipeline stages in place.
func (s *Service) dispatch(ctx context.Context, res *Result) {
	path := res.Source
	kind := res.Kind

	if kind != music.RegularFile {
		*res = res.skip(SkipNotRegular)
		return
	}
	if s.inside(s.organizer.LibraryPath(), path) && !s.inside(s.organizer.LibraryPath(), s.opts.SourceRoot) {
		*res = res.skip(SkipInsideDestination)
		return
	}

	ext := music.ClassifyExtension(path)
	switch ext.Status {
	case music.NoExtension:
		*res = res.skip(SkipNoExtension)
		return
	case music.RejectedExtension:
		*res = res.skip(SkipDisallowedExtension)
		return
	}
	res.Stage = StageFiltered

	meta, err := s.tagReader.ReadMetadata(ctx, path)
	if err != nil {
		res.Err = err
		*res = res.skip(SkipMetadataUnreadable)
		return
	}
	res.Metadata = meta
	res.Stage = StageMetadataFetched
	if meta.IsEmpty() {
		s.logger.Debug("Service.Dispatch: file has no usable tags", "path", path)
	}

	dst := s.organizer.GetLibraryPath(meta, ext.Ext)
	res.Destination = dst
	res.Stage = StageAssembled

	if filepath.Clean(path) == filepath.Clean(dst) {
		*res = res.skip(SkipAlreadyInPlace)
		return
	}
	if s.opts.DryRun {
		res.Outcome = Planned
		return
	}

	if err := s.organizer.PrepareDirectory(dst); err != nil {
		if errors.Is(err, music.ErrPathConflict) {
			*res = res.fail(FailDirectoryConflict, err)
			return
		}
		*res = res.fail(FailDirectory, err)
		return
	}
	res.Stage = StageDirectoryReady

	n, err := s.organizer.Transfer(ctx, path, dst, s.opts.Mode)
	if err != nil {
		var cleanupErr *music.SourceCleanupError
		if !errors.As(err, &cleanupErr) {
			*res = res.fail(FailTransfer, err)
			return
		}
		res.Err = err
	}
	res.Bytes = n
	res.Stage = StageTransferred
	res.Outcome = Transferred

	if s.opts.Mode == music.Move && s.opts.PruneEmptyDirs && res.Err == nil && s.opts.SourceRoot != "" {
		if err := s.organizer.PruneEmptyDirectories(filepath.Dir(path), s.opts.SourceRoot); err != nil {
			s.logger.Warn("Service.Dispatch: failed to clean up empty directories after move", "path", path, "error", err)
		}
	}
}

// complete records a result everywhere it needs to go.
func (s *Service) complete(ctx context.Context, res Result) {
	s.stats.Add(res)
	for _, o := range s.observers {
		o.Observe(res)
	}
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, s.runID, res); err != nil {
			s.logger.Warn("Service.Dispatch: failed to record result", "path", res.Source, "error", err)
		}
	}
	s.logResult(res)
}

func (s *Service) logResult(res Result) {
	switch res.Outcome {
	case Transferred:
		if res.Warning() {
			s.logger.Warn("Service.Dispatch: transferred, duplicate files remain", "src", res.Source, "dst", res.Destination, "error", res.Err)
			return
		}
		s.logger.Info("Service.Dispatch: transferred", "src", res.Source, "dst", res.Destination, "mode", s.opts.Mode.String(), "bytes", res.Bytes)
	case Planned:
		s.logger.Info("Service.Dispatch: would transfer", "src", res.Source, "dst", res.Destination, "mode", s.opts.Mode.String())
	case Failed:
		s.logger.Error("Service.Dispatch: failed", "src", res.Source, "dst", res.Destination, "stage", string(res.Stage), "reason", res.Reason, "error", res.Err)
	default:
		if res.Reason == SkipMetadataUnreadable {
			s.logger.Info("Service.Dispatch: skipped, could not read tags", "path", res.Source, "error", res.Err)
			return
		}
		s.logger.Debug("Service.Dispatch: skipped", "path", res.Source, "kind", res.Kind.String(), "reason", res.Reason)
	}
}

func (s *Service) startRun(ctx context.Context) {
	if s.recorder == nil {
		return
	}
	run := Run{
		ID:          s.runID,
		Source:      s.opts.SourceRoot,
		Destination: s.organizer.LibraryPath(),
		Format:      s.opts.Format,
		Mode:        s.opts.Mode.String(),
		DryRun:      s.opts.DryRun,
		StartedAt:   time.Now(),
	}
	if err := s.recorder.StartRun(ctx, run); err != nil {
		s.logger.Warn("Service.Run: failed to record run start", "run_id", s.runID, "error", err)
	}
}

func (s *Service) finishRun(ctx context.Context, summary Summary) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.FinishRun(context.WithoutCancel(ctx), s.runID, summary); err != nil {
		s.logger.Warn("Service.Run: failed to record run end", "run_id", s.runID, "error", err)
	}
}

// inside reports whether path lies within root (or is root).
func (s *Service) inside(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
