package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNew_WithOptions(t *testing.T) {
	w, err := New(WithDebounce(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	if w.debounce != 50*time.Millisecond {
		t.Errorf("debounce = %v, want 50ms", w.debounce)
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want Operation
	}{
		{fsnotify.Write, OpWrite},
		{fsnotify.Create, OpCreate},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Create | fsnotify.Write, OpCreate},
	}
	for _, tt := range tests {
		if got := translate(tt.op); got != tt.want {
			t.Errorf("translate(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestWatcher_WatchUnwatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")

	w, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch(a) error: %v", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch(b) error: %v", err)
	}
	if got := len(w.WatchedFiles()); got != 2 {
		t.Errorf("WatchedFiles() has %d entries, want 2", got)
	}
	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch(a) error: %v", err)
	}
	if got := len(w.WatchedFiles()); got != 1 {
		t.Errorf("WatchedFiles() has %d entries, want 1", got)
	}
}

func TestWatcher_DeliversWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, []byte("indent = \"\\t\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	events := make(chan Event, 8)
	w.OnChange(func(e Event) { events <- e })
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	w.Start()

	if err := os.WriteFile(path, []byte("indent = \"  \"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		abs, _ := filepath.Abs(path)
		if e.Path != abs {
			t.Errorf("event path = %q, want %q", e.Path, abs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}
