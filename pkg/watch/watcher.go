// Package watch re-extracts local pages when their HTML or CSS changes.
package watch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Options configures file watching behavior.
type Options struct {
	// DebounceMs is the debounce delay in milliseconds. Changes arriving
	// within the window are delivered as one batch. Default: 200ms.
	DebounceMs int

	// Include are doublestar patterns, relative to the root, of files
	// whose changes are reported.
	Include []string

	// IgnorePatterns are doublestar patterns of paths to skip.
	IgnorePatterns []string
}

// DefaultOptions returns recommended watch options.
func DefaultOptions() Options {
	return Options{
		DebounceMs: 200,
		Include: []string{
			"**/*.html",
			"**/*.htm",
			"**/*.css",
		},
		IgnorePatterns: []string{
			"**/*.swp",
			"**/*.tmp",
			"**/*~",
			".git/**",
			"**/node_modules/**",
		},
	}
}

// Stats contains watcher statistics.
type Stats struct {
	Pending   int
	Batches   int
	IsRunning bool
}

// Watcher watches a directory tree and delivers debounced batches of
// changed files.
//
// **Usage:**
//
//	w, err := watch.New(watch.DefaultOptions(), func(paths []string) { ... }, logger)
//	if err := w.Start("./site"); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher  *fsnotify.Watcher
	options  Options
	onChange func(paths []string)
	logger   *slog.Logger
	root     string

	pendingMu sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer
	batches   int
	flushMu   sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
	done     sync.WaitGroup
}

// New creates a Watcher. onChange receives absolute paths, sorted, and is
// never called concurrently with itself.
func New(options Options, onChange func(paths []string), logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = 200
	}
	if len(options.Include) == 0 {
		options.Include = DefaultOptions().Include
	}
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range append(append([]string{}, options.Include...), options.IgnorePatterns...) {
		if !doublestar.ValidatePattern(p) {
			fw.Close()
			return nil, fmt.Errorf("watch: invalid pattern %q", p)
		}
	}

	return &Watcher{
		watcher:  fw,
		options:  options,
		onChange: onChange,
		logger:   logger,
		pending:  make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching root and every directory below it.
func (w *Watcher) Start(root string) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watch: watcher already stopped")
	}
	w.mu.Unlock()

	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("watch: resolve %s: %w", root, err)
	}
	w.root = abs

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != abs && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: setup watches: %w", err)
	}

	w.logger.Info("file watcher started", "root", abs)

	w.done.Add(1)
	go w.eventLoop()
	return nil
}

// Stop stops the watcher. Pending changes are discarded. Safe to call
// multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopChan)
	w.mu.Unlock()

	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	err := w.watcher.Close()
	w.done.Wait()
	w.logger.Info("file watcher stopped")
	return err
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{Pending: len(w.pending), Batches: w.batches, IsRunning: !w.stopped && w.root != ""}
}

func (w *Watcher) eventLoop() {
	defer w.done.Done()
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.ignored(path) {
		return
	}

	// New directories are watched as they appear.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
			return
		}
	}

	if !w.included(path) {
		return
	}
	w.logger.Debug("file event", "op", event.Op.String(), "file", path)

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.schedule(path)
	}
}

// schedule adds path to the pending batch and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(time.Duration(w.options.DebounceMs)*time.Millisecond, w.flush)
}

func (w *Watcher) flush() {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.batches++
	w.pendingMu.Unlock()

	sort.Strings(paths)
	w.logger.Debug("delivering change batch", "files", len(paths))
	w.onChange(paths)
}

func (w *Watcher) rel(path string) (string, bool) {
	if w.root == "" {
		return "", false
	}
	r, err := filepath.Rel(w.root, path)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(r), true
}

func (w *Watcher) ignored(path string) bool {
	r, ok := w.rel(path)
	if !ok {
		return false
	}
	for _, p := range w.options.IgnorePatterns {
		if m, _ := doublestar.Match(p, r); m {
			return true
		}
		// Directory patterns like ".git/**" also cover the directory itself.
		if m, _ := doublestar.Match(p, r+"/x"); m {
			return true
		}
	}
	return false
}

func (w *Watcher) included(path string) bool {
	r, ok := w.rel(path)
	if !ok {
		return false
	}
	for _, p := range w.options.Include {
		if m, _ := doublestar.Match(p, r); m {
			return true
		}
	}
	return false
}
