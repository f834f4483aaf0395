package dispatching

import (
	"context"

	"github.com/contre95/dispatch/src/music"
	"golang.org/x/sync/errgroup"
)

// runConcurrent feeds walked entries to a bounded pool of workers. Workers
// never return errors, so one file cannot cancel the others; the pool only
// stops taking new entries when ctx is cancelled.
func (s *Service) runConcurrent(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)

	walkErr := s.walker.Walk(ctx, s.opts.SourceRoot, func(path string, kind music.FileKind) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			s.Dispatch(ctx, path, kind)
			return nil
		})
		return nil
	})

	_ = g.Wait()
	return walkErr
}
