package manager

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches rule pack files and triggers reloads after a quiet
// period, so an editor writing a file in several steps causes one reload.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *FileWatcherConfig
	debounce *Debouncer

	// State
	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// FileWatcherConfig contains configuration for the file watcher.
type FileWatcherConfig struct {
	// Path is the file or directory to watch
	Path string

	// DebounceInterval is the quiet period before a reload is triggered
	// (default: 250ms)
	DebounceInterval time.Duration

	// Extensions is the list of file extensions that trigger a reload
	Extensions []string

	// SkipHidden ignores files and directories starting with "."
	SkipHidden bool
}

// DefaultFileWatcherConfig returns the default watcher configuration.
func DefaultFileWatcherConfig() *FileWatcherConfig {
	return &FileWatcherConfig{
		DebounceInterval: 250 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// NewFileWatcher creates a new file watcher.
func NewFileWatcher(config *FileWatcherConfig, logger *slog.Logger) (*FileWatcher, error) {
	if config == nil {
		config = DefaultFileWatcherConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("watch path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logger,
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, invoking onChange
// after each burst of relevant file events. A watcher runs once; the
// fsnotify watcher is closed when Watch returns.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func() error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.debounce.Stop()
		_ = fw.watcher.Close()
		close(fw.doneCh)
	}()

	if err := fw.addPath(fw.config.Path); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	fw.logger.Info("file watcher started",
		"path", fw.config.Path,
		"debounce", fw.config.DebounceInterval,
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("file watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("rule file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			// New directories are watched so packs added under them are seen.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = fw.addDirectory(event.Name)
				}
			}

			name := event.Name
			fw.debounce.Trigger(func() {
				fw.logger.Info("triggering rule reload", "path", name)
				if err := onChange(); err != nil {
					fw.logger.Error("rule reload failed", "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

// Stop stops a running watcher and waits for Watch to return.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	running := fw.running
	fw.mu.Unlock()

	fw.stopOnce.Do(func() { close(fw.stopCh) })
	if running {
		<-fw.doneCh
		return
	}
	fw.debounce.Stop()
	_ = fw.watcher.Close()
}

// addPath adds a file or directory to the watcher. Single files are watched
// through their parent directory so editors that replace the file on save
// keep triggering events.
func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fw.addDirectory(path)
	}
	return fw.watcher.Add(filepath.Dir(path))
}

// addDirectory adds a directory and all subdirectories to the watcher.
func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if fw.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
			fw.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}

// shouldProcessEvent determines if an event should trigger a reload.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if fw.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return true
		}
	}

	// A watched single file only reacts to its own events.
	if info, err := os.Stat(fw.config.Path); err == nil && !info.IsDir() {
		if filepath.Clean(event.Name) != filepath.Clean(fw.config.Path) {
			return false
		}
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, valid := range fw.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// Debouncer collects rapid events and runs the latest callback only after
// a quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback to run after the debounce interval, replacing
// any callback still pending.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.callback = nil
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
