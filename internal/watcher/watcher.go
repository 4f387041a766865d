// Package watcher re-runs work when symbol facts change on disk.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"namecheck/internal/slogutil"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// ChangeHandler is called with each debounced batch of changes.
type ChangeHandler func(events []Event)

// Config contains watcher configuration
type Config struct {
	DebounceMs     int      `json:"debounceMs" mapstructure:"debounceMs"`
	IgnorePatterns []string `json:"ignorePatterns" mapstructure:"ignorePatterns"`
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		DebounceMs: 500,
		IgnorePatterns: []string{
			"**/*.tmp",
			"**/*~",
			"**/.#*",
			".namecheck/**",
			"**/obj/**",
			"**/bin/**",
		},
	}
}

// Watcher watches a facts file or a source directory.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	handler ChangeHandler
	fsw     *fsnotify.Watcher
	batch   *BatchDebouncer

	mu     sync.Mutex
	root   string
	target string // set when a single file is watched
	dirs   map[string]bool
}

// New creates a new file system watcher
func New(config Config, logger *slog.Logger, handler ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not start file watcher: %w", err)
	}

	delay := time.Duration(config.DebounceMs) * time.Millisecond
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	w := &Watcher{
		config:  config,
		logger:  slogutil.OrDiscard(logger),
		handler: handler,
		fsw:     fsw,
		dirs:    make(map[string]bool),
	}
	w.batch = NewBatchDebouncer(delay, w.emit)
	return w, nil
}

// Watch registers path. A file is watched through its parent directory so
// that editors replacing it atomically are still seen. A directory is watched
// recursively.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !info.IsDir() {
		w.root = filepath.Dir(abs)
		w.target = abs
		return w.addDir(w.root)
	}

	w.root = abs
	w.target = ""
	return filepath.Walk(abs, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return nil
		}
		if p != abs && skipDir(fi.Name()) {
			return filepath.SkipDir
		}
		return w.addDir(p)
	})
}

func (w *Watcher) addDir(dir string) error {
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("could not watch %s: %w", dir, err)
	}
	w.dirs[dir] = true
	w.logger.Debug("Watching directory", "path", dir)
	return nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "bin" || name == "obj"
}

// Run processes events until ctx is cancelled. Pending batches are dropped on
// cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("File watcher started",
		"root", w.root,
		"debounceMs", w.config.DebounceMs,
	)
	defer func() {
		w.batch.Cancel()
		w.fsw.Close()
		w.logger.Info("File watcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	w.mu.Lock()
	target, root := w.target, w.root
	w.mu.Unlock()

	if target != "" && filepath.Clean(event.Name) != target {
		return
	}

	if event.Has(fsnotify.Create) && target == "" {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() && !skipDir(fi.Name()) {
			w.mu.Lock()
			if err := w.addDir(event.Name); err != nil {
				w.logger.Warn("Failed to watch directory", "path", event.Name, "error", err)
			}
			w.mu.Unlock()
			return
		}
	}

	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		rel = event.Name
	}
	rel = filepath.ToSlash(rel)
	if target == "" && w.IsIgnored(rel) {
		return
	}

	typ, ok := eventType(event.Op)
	if !ok {
		return
	}
	w.batch.Add(Event{Type: typ, Path: rel, Timestamp: time.Now()})
}

func eventType(op fsnotify.Op) (EventType, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreate, true
	case op.Has(fsnotify.Write):
		return EventModify, true
	case op.Has(fsnotify.Remove):
		return EventDelete, true
	case op.Has(fsnotify.Rename):
		return EventRename, true
	default:
		return 0, false
	}
}

func (w *Watcher) emit(events []Event) {
	w.logger.Debug("Changes detected", "events", len(events))
	if w.handler != nil {
		w.handler(events)
	}
}

// IsIgnored checks a slash-separated path relative to the watched root
// against the ignore patterns.
func (w *Watcher) IsIgnored(path string) bool {
	for _, pattern := range w.config.IgnorePatterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// Close releases the underlying watcher without running.
func (w *Watcher) Close() error {
	w.batch.Cancel()
	return w.fsw.Close()
}

// WatchedDirs returns the number of directories being watched.
func (w *Watcher) WatchedDirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}
