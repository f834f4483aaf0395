package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long a path must stay quiet before it is emitted.
	Debounce time.Duration
	// IncludeWrites also treats write events as activity, so a file still
	// being copied in is only emitted once the copy settles.
	IncludeWrites bool
	// Exclude is a directory (usually the destination root) that is never watched.
	Exclude string
}

// Watcher monitors a source tree and emits paths of files that were created
// or changed once they have been quiet for the debounce period.
type Watcher struct {
	watcher  *fsnotify.Watcher
	opts     Options
	out      chan<- string
	logger   *slog.Logger
	mu       sync.Mutex
	timers   map[string]*time.Timer
	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewWatcher creates a new file system watcher that emits on out.
func NewWatcher(out chan<- string, opts Options, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = time.Second
	}
	return &Watcher{
		watcher:  w,
		opts:     opts,
		out:      out,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start watches root and every directory below it.
func (w *Watcher) Start(ctx context.Context, root string) error {
	w.logger.Info("Starting file watcher", "path", root, "debounce", w.opts.Debounce.String())
	if err := w.addTree(root); err != nil {
		return err
	}
	w.running = true
	go w.watchLoop(ctx)
	w.logger.Info("File watcher started successfully")
	return nil
}

// Stop stops the watcher and drops pending events.
func (w *Watcher) Stop() {
	if !w.running {
		w.watcher.Close()
		return
	}
	w.logger.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)
	<-w.done

	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.watcher.Close()
}

// addTree adds dir and its subdirectories. Unreadable subdirectories are
// logged and skipped.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("Watcher: cannot watch directory", "path", path, "error", err)
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("Watcher: cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) excluded(path string) bool {
	if w.opts.Exclude == "" {
		return false
	}
	return filepath.Clean(path) == filepath.Clean(w.opts.Exclude)
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
	case event.Has(fsnotify.Write) && w.opts.IncludeWrites:
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancel(event.Name)
		return
	default:
		return
	}

	info, err := os.Lstat(event.Name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Debug("Watcher: cannot stat event path", "path", event.Name, "error", err)
		}
		return
	}
	if info.IsDir() {
		// Files moved in together with a new directory produce no events
		// of their own, so they are scheduled here.
		if err := w.addTree(event.Name); err != nil {
			w.logger.Warn("Watcher: cannot watch new directory", "path", event.Name, "error", err)
			return
		}
		w.scheduleTree(ctx, event.Name)
		return
	}
	w.schedule(ctx, event.Name)
}

func (w *Watcher) scheduleTree(ctx context.Context, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			w.schedule(ctx, path)
		}
		return nil
	})
}

// schedule starts or resets the debounce timer of path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.opts.Debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.emit(ctx, path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) emit(ctx context.Context, path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	select {
	case w.out <- path:
		w.logger.Debug("Emitted file event after debounce", "path", path)
	case <-ctx.Done():
	case <-w.stopChan:
	}
}
