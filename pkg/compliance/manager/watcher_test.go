package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewFileWatcher(t *testing.T) {
	if _, err := NewFileWatcher(&FileWatcherConfig{}, nil); err == nil {
		t.Error("NewFileWatcher(empty path) error = nil")
	}
}

func TestFileWatcher_ShouldProcessEvent(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultFileWatcherConfig()
	cfg.Path = dir

	fw, err := NewFileWatcher(cfg, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	defer fw.Stop()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"yaml write", fsnotify.Event{Name: filepath.Join(dir, "rules.yaml"), Op: fsnotify.Write}, true},
		{"yml create", fsnotify.Event{Name: filepath.Join(dir, "rules.yml"), Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: filepath.Join(dir, "rules.yaml"), Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: filepath.Join(dir, "rules.yaml"), Op: fsnotify.Chmod}, false},
		{"other extension", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}, false},
		{"hidden file", fsnotify.Event{Name: filepath.Join(dir, ".rules.yaml.swp"), Op: fsnotify.Write}, false},
		{"hidden yaml", fsnotify.Event{Name: filepath.Join(dir, ".draft.yaml"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fw.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileWatcher_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte(packV1), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultFileWatcherConfig()
	cfg.Path = path
	fw, err := NewFileWatcher(cfg, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	defer fw.Stop()

	if fw.shouldProcessEvent(fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}) {
		t.Error("sibling file should be ignored when watching a single file")
	}
	if !fw.shouldProcessEvent(fsnotify.Event{Name: path, Op: fsnotify.Write}) {
		t.Error("watched file event ignored")
	}
}

func TestFileWatcher_StopUnblocksWatch(t *testing.T) {
	cfg := DefaultFileWatcherConfig()
	cfg.Path = t.TempDir()
	fw, err := NewFileWatcher(cfg, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- fw.Watch(context.Background(), func() error { return nil }) }()
	time.Sleep(50 * time.Millisecond)

	fw.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not return after Stop()")
	}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback ran %d times after Stop(), want 0", got)
	}
}
