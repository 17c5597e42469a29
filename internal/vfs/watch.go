package vfs

import (
	"context"
	"path/filepath"
	"sync"
	"time"
)

// SimpleWatcher is a polling-based watcher portable across OSes and file
// systems, including MemFS. It reports OpWrite when a watched file's
// modification time moves forward and OpRemove when it disappears.
type SimpleWatcher struct {
	fs   FileSystem
	evCh chan Event
	erCh chan error

	mu     sync.Mutex
	paths  map[string]time.Time // last seen modification time
	stop   context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

func NewSimpleWatcher(fs FileSystem) *SimpleWatcher {
	return &SimpleWatcher{
		fs:    fs,
		evCh:  make(chan Event, 64),
		erCh:  make(chan error, 1),
		paths: make(map[string]time.Time),
	}
}

func (w *SimpleWatcher) Events() <-chan Event { return w.evCh }
func (w *SimpleWatcher) Errors() <-chan error { return w.erCh }

// Add starts watching name. Its current state is the baseline, so only
// later changes are reported.
func (w *SimpleWatcher) Add(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	var mod time.Time
	if info, err := w.fs.Stat(name); err == nil {
		mod = info.ModTime()
	}
	w.paths[name] = mod
	return nil
}

func (w *SimpleWatcher) Remove(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.paths, name)
	return nil
}

// Close stops polling and closes both channels.
func (w *SimpleWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	stop := w.stop
	w.mu.Unlock()

	if stop != nil {
		stop()
	}
	w.wg.Wait()
	close(w.evCh)
	close(w.erCh)
	return nil
}

// StartPolling checks every watched path once per interval until ctx is
// done or the watcher is closed.
func (w *SimpleWatcher) StartPolling(ctx context.Context, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.stop != nil {
		w.stop()
	}
	ctx, cancel := context.WithCancel(ctx)
	w.stop = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, ev := range w.poll() {
					select {
					case w.evCh <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return nil
}

func (w *SimpleWatcher) poll() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	var events []Event
	now := time.Now()
	for name, last := range w.paths {
		info, err := w.fs.Stat(name)
		if err != nil {
			if !last.IsZero() {
				w.paths[name] = time.Time{}
				events = append(events, Event{Path: name, Op: OpRemove, Time: now})
			}
			continue
		}
		mod := info.ModTime()
		if mod.After(last) {
			op := OpWrite
			if last.IsZero() {
				op = OpCreate
			}
			w.paths[name] = mod
			events = append(events, Event{Path: name, Op: op, Time: now})
		}
	}
	return events
}

// NewWatcher returns an fsnotify watcher when the platform supports it,
// and otherwise a SimpleWatcher polling fsys at interval.
func NewWatcher(ctx context.Context, fsys FileSystem, interval time.Duration) (Watcher, error) {
	if _, isOS := fsys.(*OSFS); isOS {
		if fw, err := NewFSWatcher(); err == nil {
			return fw, nil
		}
	}
	sw := NewSimpleWatcher(fsys)
	if err := sw.StartPolling(ctx, interval); err != nil {
		return nil, err
	}
	return sw, nil
}

// WatchFiles registers files with w. fsnotify watchers get the parent
// directories, so that files replaced by rename are still seen; callers
// filter events by path. Other watchers get the files themselves.
func WatchFiles(w Watcher, files []string) error {
	if _, native := w.(*FSNotifyWatcher); !native {
		for _, f := range files {
			if err := w.Add(f); err != nil {
				return err
			}
		}
		return nil
	}

	seen := make(map[string]struct{})
	for _, f := range files {
		dir := filepath.Dir(f)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if err := w.Add(dir); err != nil {
			return err
		}
	}
	return nil
}
