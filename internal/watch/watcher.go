// Package watch reports changed level sources in a directory.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher emits the path of a source file once it has been quiet for the
// debounce interval after a write, create or rename.
type Watcher struct {
	watcher *fsnotify.Watcher
	match   func(path string) bool
	pending *debouncer

	Events chan string
	Errors chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New watches dir (not recursive). Only paths accepted by match are reported.
func New(dir string, match func(path string) bool, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	closeCh := make(chan struct{})
	watcher := &Watcher{
		watcher: w,
		match:   match,
		pending: newDebouncer(debounce, closeCh),
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: closeCh,
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer w.pending.stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.match(event.Name) {
				continue
			}
			w.pending.touch(event.Name)
		case f := <-w.pending.fired:
			if !w.pending.accept(f) {
				continue
			}
			select {
			case w.Events <- f.name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				slog.Warn("watch error dropped", "err", err)
			}
		case <-w.closeCh:
			return
		}
	}
}

// firing is a debounce timer expiry for one path. gen tells a stale expiry
// (timer re-armed after it already fired) from the current one.
type firing struct {
	name string
	gen  uint64
}

type pendingPath struct {
	timer *time.Timer
	gen   uint64
}

// debouncer is a per-path trailing debounce. It is owned by one goroutine:
// touch and accept must not be called concurrently.
type debouncer struct {
	delay   time.Duration
	pending map[string]pendingPath
	next    uint64
	fired   chan firing
	closeCh <-chan struct{}
}

func newDebouncer(delay time.Duration, closeCh <-chan struct{}) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]pendingPath),
		fired:   make(chan firing, 16),
		closeCh: closeCh,
	}
}

// touch (re)starts the quiet period for name.
func (d *debouncer) touch(name string) {
	if p, ok := d.pending[name]; ok && p.timer.Stop() {
		p.timer.Reset(d.delay)
		return
	}
	// either new, or the old timer already fired and its expiry is in flight
	d.next++
	gen := d.next
	d.pending[name] = pendingPath{
		gen: gen,
		timer: time.AfterFunc(d.delay, func() {
			select {
			case d.fired <- firing{name: name, gen: gen}:
			case <-d.closeCh:
			}
		}),
	}
}

// accept reports whether f is the current expiry for its path and clears it.
func (d *debouncer) accept(f firing) bool {
	p, ok := d.pending[f.name]
	if !ok || p.gen != f.gen {
		return false
	}
	delete(d.pending, f.name)
	return true
}

func (d *debouncer) stop() {
	for _, p := range d.pending {
		p.timer.Stop()
	}
}

// Serve calls handle for every reported path until ctx is done.
// Watch errors are logged and do not stop the loop.
func (w *Watcher) Serve(ctx context.Context, handle func(path string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			handle(path)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", "err", err)
		}
	}
}
