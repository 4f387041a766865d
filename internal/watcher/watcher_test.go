package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventCreate, "create"},
		{EventModify, "modify"},
		{EventDelete, "delete"},
		{EventRename, "rename"},
		{EventType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.eventType.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.DebounceMs != 500 {
		t.Errorf("DebounceMs = %d, want 500", config.DebounceMs)
	}
	if len(config.IgnorePatterns) == 0 {
		t.Error("IgnorePatterns should not be empty")
	}
}

func TestEventTypeFromOp(t *testing.T) {
	tests := []struct {
		op     fsnotify.Op
		want   EventType
		wantOK bool
	}{
		{fsnotify.Create, EventCreate, true},
		{fsnotify.Write, EventModify, true},
		{fsnotify.Remove, EventDelete, true},
		{fsnotify.Rename, EventRename, true},
		{fsnotify.Create | fsnotify.Write, EventCreate, true},
		{fsnotify.Chmod, 0, false},
	}
	for _, tt := range tests {
		got, ok := eventType(tt.op)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("eventType(%v) = %v, %v, want %v, %v", tt.op, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestWatcherIsIgnored(t *testing.T) {
	w, err := New(DefaultConfig(), testLogger(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	tests := []struct {
		path    string
		ignored bool
	}{
		{"Orders.cs.tmp", true},
		{"src/Orders.cs~", true},
		{"src/.#Orders.cs", true},
		{".namecheck/namecheck.db", true},
		{"src/App/obj/Debug/App.g.cs", true},
		{"bin/App.dll", true},
		{"src/Orders.cs", false},
		{"facts.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := w.IsIgnored(tt.path)
			if got != tt.ignored {
				t.Errorf("IsIgnored(%q) = %v, want %v", tt.path, got, tt.ignored)
			}
		})
	}
}

func TestWatchDirectorySkipsBuildOutput(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src/App", "src/App/obj", "bin", ".git"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New(DefaultConfig(), testLogger(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(root); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	// root, src, src/App
	if got := w.WatchedDirs(); got != 3 {
		t.Errorf("WatchedDirs() = %d, want 3", got)
	}
}

func TestWatchMissingPath(t *testing.T) {
	w, err := New(DefaultConfig(), testLogger(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Watch(missing) succeeded, want error")
	}
}

func TestWatcherReportsFileChange(t *testing.T) {
	dir := t.TempDir()
	facts := filepath.Join(dir, "facts.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(facts, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	batches := make(chan []Event, 4)
	config := Config{DebounceMs: 20}
	w, err := New(config, testLogger(), func(events []Event) { batches <- events })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Watch(facts); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if err := os.WriteFile(other, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(facts, []byte(`[{"name":"A","kind":"type"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case events := <-batches:
		for _, e := range events {
			if e.Path != "facts.json" {
				t.Errorf("event for %q, want only facts.json", e.Path)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestCoalesce(t *testing.T) {
	events := []Event{
		{Type: EventCreate, Path: "b.cs"},
		{Type: EventModify, Path: "a.cs"},
		{Type: EventModify, Path: "b.cs"},
		{Type: EventDelete, Path: "a.cs"},
	}
	got := Coalesce(events)
	if len(got) != 2 {
		t.Fatalf("Coalesce() returned %d events, want 2", len(got))
	}
	if got[0].Path != "a.cs" || got[0].Type != EventDelete {
		t.Errorf("got[0] = %+v, want a.cs delete", got[0])
	}
	if got[1].Path != "b.cs" || got[1].Type != EventModify {
		t.Errorf("got[1] = %+v, want b.cs modify", got[1])
	}
}

// BatchDebouncer tests

func TestNewBatchDebouncer(t *testing.T) {
	emit := func(events []Event) {}
	b := NewBatchDebouncer(100*time.Millisecond, emit)

	if b == nil {
		t.Fatal("NewBatchDebouncer() returned nil")
	}
	if b.delay != 100*time.Millisecond {
		t.Errorf("delay = %v, want 100ms", b.delay)
	}
	if b.events == nil {
		t.Error("events should be initialized")
	}
}

func TestBatchDebouncerAdd(t *testing.T) {
	var received []Event
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		received = events
		mu.Unlock()
	}

	b := NewBatchDebouncer(50*time.Millisecond, emit)

	b.Add(Event{Type: EventCreate, Path: "file1.cs"})
	b.Add(Event{Type: EventModify, Path: "file2.cs"})
	b.Add(Event{Type: EventDelete, Path: "file3.cs"})

	if b.EventCount() != 3 {
		t.Errorf("EventCount() = %d, want 3", b.EventCount())
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	if len(received) != 3 {
		t.Errorf("Should have received 3 events, got %d", len(received))
	}
	mu.Unlock()
}

func TestBatchDebouncerCancel(t *testing.T) {
	var called bool
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		called = true
		mu.Unlock()
	}

	b := NewBatchDebouncer(50*time.Millisecond, emit)
	b.Add(Event{Type: EventCreate, Path: "file.cs"})
	b.Cancel()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	if called {
		t.Error("Emit should not be called after cancel")
	}
	mu.Unlock()
	if b.EventCount() != 0 {
		t.Errorf("EventCount() = %d after cancel, want 0", b.EventCount())
	}
}

func TestBatchDebouncerFlush(t *testing.T) {
	var received []Event

	b := NewBatchDebouncer(time.Hour, func(events []Event) { received = events })
	b.Add(Event{Type: EventModify, Path: "a.cs"})
	b.Add(Event{Type: EventModify, Path: "a.cs"})
	b.Flush()

	if len(received) != 1 {
		t.Errorf("Flush() emitted %d events, want 1 after coalescing", len(received))
	}

	// Flush without pending events should not emit.
	received = nil
	b.Flush()
	if received != nil {
		t.Errorf("Flush() with no pending events emitted %v", received)
	}
}
