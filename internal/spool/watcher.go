package spool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a spool file must stay unchanged before it is handed over.
const DefaultSettle = 100 * time.Millisecond

// HandlerFunc processes one settled spool file.
type HandlerFunc func(ctx context.Context, path string) error

// Watcher hands spool files matching Pattern in Dir to a handler once writers
// have stopped touching them. Files are handled one at a time.
type Watcher struct {
	Dir     string
	Pattern string
	Settle  time.Duration
	// IncludeExisting handles files already present when Run starts.
	IncludeExisting bool
}

// NewWatcher creates a watcher for *.json files in dir.
func NewWatcher(dir string) *Watcher {
	return &Watcher{
		Dir:     dir,
		Pattern: "*.json",
		Settle:  DefaultSettle,
	}
}

// Run watches until ctx is done. Handler errors are logged and do not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context, handle HandlerFunc) error {
	if _, err := filepath.Match(w.Pattern, ""); err != nil {
		return fmt.Errorf("invalid spool pattern %q: %w", w.Pattern, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}

	if w.IncludeExisting {
		existing, err := w.Existing()
		if err != nil {
			return err
		}
		for _, path := range existing {
			w.dispatch(ctx, handle, path)
		}
	}

	ready := make(chan string, 64)
	d := newDebouncer(w.settle())
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.matches(event) {
				continue
			}
			slog.Debug("Spool event", "path", event.Name, "op", event.Op.String())
			d.add(event.Name, func(path string) {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})

		case path := <-ready:
			w.dispatch(ctx, handle, path)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			slog.Error("Spool watcher error", "error", wErr)
		}
	}
}

// Existing lists matching files already in the directory, oldest name first.
func (w *Watcher) Existing() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(w.Dir, w.Pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list spool: %w", err)
	}

	var files []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (w *Watcher) dispatch(ctx context.Context, handle HandlerFunc, path string) {
	if _, err := os.Stat(path); err != nil {
		// Removed before it settled.
		return
	}
	if err := handle(ctx, path); err != nil {
		slog.Warn("Failed to process spool file", "path", path, "error", err)
	}
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	ok, _ := filepath.Match(w.Pattern, filepath.Base(event.Name))
	return ok
}

func (w *Watcher) settle() time.Duration {
	if w.Settle <= 0 {
		return DefaultSettle
	}
	return w.Settle
}

// debouncer coalesces bursts of events per path.
type debouncer struct {
	timers  map[string]*time.Timer
	delay   time.Duration
	mu      sync.Mutex
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
	}
}

func (d *debouncer) add(path string, fire func(string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		stopped := d.stopped
		d.mu.Unlock()

		if !stopped {
			fire(path)
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}
