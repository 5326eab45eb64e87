package shader

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lelepado01/RenderingEngine/common"
)

// Watcher reports shader files that changed on disk. Events for the same file arriving within
// the debounce window collapse into one report.
type Watcher interface {
	// Changed returns the names, relative to the watched directory and slash separated, of
	// files written since the last call. It never blocks.
	//
	// Returns:
	//   - []string: the changed files, empty if nothing changed
	Changed() []string

	// Close stops watching.
	Close() error
}

type watcher struct {
	dir      string
	fw       *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	done    chan struct{}
	once    sync.Once
}

var _ Watcher = &watcher{}

// NewWatcher starts watching dir for writes to shader files.
//
// Parameters:
//   - dir: the shader directory
//   - debounce: how long a file must stay quiet before it is reported
//
// Returns:
//   - Watcher: the running watcher
//   - error: if the directory cannot be watched
func NewWatcher(dir string, debounce time.Duration) (Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch shader directory %q: %w", dir, err)
	}

	w := &watcher{
		dir:      dir,
		fw:       fw,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			rel, err := filepath.Rel(w.dir, event.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			w.pending[filepath.ToSlash(rel)] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("shader watcher error", "dir", w.dir, "error", err)
		}
	}
}

func (w *watcher) Changed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	now := time.Now()
	for name, at := range w.pending {
		if now.Sub(at) < w.debounce {
			continue
		}
		changed = append(changed, name)
		delete(w.pending, name)
	}
	return changed
}

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}
