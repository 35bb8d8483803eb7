package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk.
// Invalid revisions are logged and the last valid config stays current.
type Watcher struct {
	path     string
	logger   *slog.Logger
	onChange func(*File)
	debounce time.Duration
	fsw      *fsnotify.Watcher
	current  atomic.Pointer[File]
}

// NewWatcher loads path once and starts watching its directory. The initial
// load must succeed. onChange runs on the Run goroutine for every valid
// reload. A nil logger uses slog.Default().
func NewWatcher(path string, onChange func(*File), logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	f, err := Load(abs)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		logger:   logger,
		onChange: onChange,
		debounce: DefaultDebounce,
		fsw:      fsw,
	}
	w.current.Store(f)
	return w, nil
}

// WithDebounce sets how long the watcher waits for events to settle before
// reloading. Call it before Run.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Current returns the last valid config.
func (w *Watcher) Current() *File {
	return w.current.Load()
}

// Run processes file events until ctx is cancelled, then releases the
// underlying watcher. It must be called at most once.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	name := filepath.Base(w.path)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) reload() {
	f, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected, keeping previous",
			slog.String("path", w.path),
			slog.Any("error", err))
		return
	}
	w.current.Store(f)
	w.logger.Info("config reloaded",
		slog.String("path", w.path),
		slog.Int("ceiling", f.Ceiling))
	if w.onChange != nil {
		w.onChange(f)
	}
}
