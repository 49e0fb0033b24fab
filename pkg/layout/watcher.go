package layout

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Logger defines the logging surface the watcher relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{}) {}

// Watcher serves the current layout and reloads it when the file changes.
// A reload that fails to parse keeps the previous layout.
type Watcher struct {
	path    string
	current atomic.Pointer[Layout]
	log     Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher loads path once and returns a watcher serving it.
func NewWatcher(path string, log Logger) (*Watcher, error) {
	l, err := Load(path)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = noopLogger{}
	}
	w := &Watcher{path: path, log: log}
	w.current.Store(l)
	return w, nil
}

// Current returns the active layout.
func (w *Watcher) Current() *Layout {
	return w.current.Load()
}

// Run watches the layout file's directory until ctx is cancelled. It returns
// immediately when no layout file is configured.
func (w *Watcher) Run(ctx context.Context) error {
	if w.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create layout watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files atomically, so watch the directory.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch layout dir: %w", err)
	}
	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			w.stopDebounce()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WarnObj("layout watcher error", "layout_error", map[string]any{
				"path":  w.path,
				"error": err.Error(),
			})
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) reload() {
	l, err := Load(w.path)
	if err != nil {
		w.log.WarnObj("layout reload failed; keeping previous layout", "layout_error", map[string]any{
			"path":  w.path,
			"error": err.Error(),
		})
		return
	}
	w.current.Store(l)
	w.log.InfoObj("layout reloaded", "layout_meta", map[string]any{
		"path":   w.path,
		"fields": len(l.fields),
	})
}
