// Package watch re-runs a handler when data files in a directory are created
// or rewritten.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc"
)

// DefaultDebounce is the quiet period after the last write before a file is
// handled.
const DefaultDebounce = 300 * time.Millisecond

// Watcher debounces fsnotify events per file.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	accept   func(path string) bool
	debounce time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	lastMod map[string]time.Time
	ready   chan string
	done    chan struct{}
	pending sync.WaitGroup // armed or running debounce callbacks
}

// New watches dir. accept filters file names; nil accepts everything.
func New(dir string, accept func(path string) bool, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if accept == nil {
		accept = func(string) bool { return true }
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		watcher:  fw,
		accept:   accept,
		debounce: debounce,
		timers:   map[string]*time.Timer{},
		lastMod:  map[string]time.Time{},
		ready:    make(chan string, 16),
		done:     make(chan struct{}),
	}, nil
}

// Run dispatches settled files to handle until ctx is cancelled or the
// watcher fails. In-flight handlers finish before Run returns. Run may be
// called once.
func (w *Watcher) Run(ctx context.Context, handle func(path string)) error {
	var wg conc.WaitGroup
	defer func() {
		w.stopTimers()
		close(w.done)
		w.pending.Wait()
		wg.Wait()
		w.watcher.Close()
	}()
	slog.Info("watching directory", "dir", w.dir, "debounce", w.debounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.accept(ev.Name) {
				continue
			}
			w.schedule(ev.Name)
		case path := <-w.ready:
			if !w.changed(path) {
				continue
			}
			wg.Go(func() { handle(path) })
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.dir, err)
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		// A timer that already fired is re-armed and runs its callback again.
		if !t.Reset(w.debounce) {
			w.pending.Add(1)
		}
		return
	}
	w.pending.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

// changed reports whether path has a newer modification time than the last
// one handled.
func (w *Watcher) changed(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if prev, ok := w.lastMod[path]; ok && !info.ModTime().After(prev) {
		return false
	}
	w.lastMod[path] = info.ModTime()
	return true
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, p)
	}
}
