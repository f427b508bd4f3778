// Package watch turns bursts of file-system events into a single debounced
// callback. It backs the content store and the feed token store.
package watch

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Filter reports whether an event should trigger a refresh. A nil Filter
// accepts every create, write, remove and rename event.
type Filter func(event fsnotify.Event) bool

// Watcher invokes a refresh callback once file-system activity has been quiet
// for the configured delay.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *log.Logger
	filter  Filter
	refresh func()

	treesMu sync.Mutex
	trees   []string

	refreshMu    sync.Mutex
	refreshTimer *time.Timer
	refreshDelay time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New starts a watcher. Paths are registered afterwards with Add or AddTree.
func New(debounce time.Duration, filter Filter, refresh func(), logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.Default()
	}

	w := &Watcher{
		watcher:      fw,
		logger:       logger,
		filter:       filter,
		refresh:      refresh,
		refreshDelay: debounce,
		done:         make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Add watches a single file or directory.
func (w *Watcher) Add(path string) error {
	return w.watcher.Add(filepath.Clean(path))
}

// AddTree watches root and every directory below it. Directories created
// later inside root are picked up automatically.
func (w *Watcher) AddTree(root string) {
	root = filepath.Clean(root)
	w.treesMu.Lock()
	w.trees = append(w.trees, root)
	w.treesMu.Unlock()

	w.addRecursive(root)
}

// Close stops the watcher and cancels any pending refresh.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)

		w.refreshMu.Lock()
		if w.refreshTimer != nil {
			w.refreshTimer.Stop()
			w.refreshTimer = nil
		}
		w.refreshMu.Unlock()

		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create && w.withinTree(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRecursive(event.Name)
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if w.filter != nil && !w.filter(event) {
		return
	}
	w.scheduleRefresh()
}

func (w *Watcher) scheduleRefresh() {
	select {
	case <-w.done:
		return
	default:
	}

	w.refreshMu.Lock()
	defer w.refreshMu.Unlock()

	if w.refreshTimer != nil {
		w.refreshTimer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.refreshDelay, func() {
		select {
		case <-w.done:
			return
		default:
		}

		w.refresh()

		w.refreshMu.Lock()
		if w.refreshTimer == timer {
			w.refreshTimer = nil
		}
		w.refreshMu.Unlock()
	})

	w.refreshTimer = timer
}

func (w *Watcher) withinTree(path string) bool {
	path = filepath.Clean(path)

	w.treesMu.Lock()
	defer w.treesMu.Unlock()
	for _, root := range w.trees {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel != ".." && !strings.HasPrefix(rel, "../") {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(path string) {
	filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Printf("walk error for %s: %v", p, err)
			return nil
		}

		if d.IsDir() {
			if err := w.watcher.Add(p); err != nil {
				w.logger.Printf("watcher add failure for %s: %v", p, err)
			}
		}
		return nil
	})
}
