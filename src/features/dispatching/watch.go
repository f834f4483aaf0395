package dispatching

import (
	"context"
)

// Watch dispatches paths as they arrive on paths until the channel closes or
// ctx is cancelled. It is used after Run to pick up files added later.
func (s *Service) Watch(ctx context.Context, paths <-chan string) {
	s.logger.Info("Service.Watch: waiting for new files", "source", s.opts.SourceRoot)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Service.Watch: stopped", "run_id", s.runID)
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			s.Dispatch(ctx, path, s.walker.Classify(path))
		}
	}
}
