package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// FileWatcher polls a file's modification time and calls back when it moves
// past the baseline. The callback runs on the watcher goroutine; UI code must
// hop to its own thread.
type FileWatcher struct {
	mu       sync.Mutex
	path     string
	baseline time.Time
	interval time.Duration
	once     bool
	stopCh   chan struct{}
	onChange func(path string)
}

// NewFileWatcher watches path, resolving symlinks, every interval.
func NewFileWatcher(path string, interval time.Duration) (*FileWatcher, error) {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &FileWatcher{path: path, baseline: info.ModTime(), interval: interval}, nil
}

// NewBinaryWatcher watches the running executable and fires once when it is
// rebuilt. Returns nil if the executable cannot be located.
func NewBinaryWatcher(interval time.Duration) *FileWatcher {
	exe, err := os.Executable()
	if err != nil {
		return nil
	}
	w, err := NewFileWatcher(exe, interval)
	if err != nil {
		return nil
	}
	w.once = true
	return w
}

// OnChange sets the callback.
func (w *FileWatcher) OnChange(callback func(path string)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Path returns the watched path.
func (w *FileWatcher) Path() string { return w.path }

// Baseline returns the modification time changes are measured against.
func (w *FileWatcher) Baseline() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.baseline
}

// Start begins polling in a background goroutine.
func (w *FileWatcher) Start() {
	w.mu.Lock()
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()
	go w.loop(stop)
}

// Stop ends polling. It is safe to call more than once.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *FileWatcher) loop(stop chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if w.Check() && w.once {
				return
			}
		}
	}
}

// Check compares the file against the baseline. On a change it advances the
// baseline, calls the callback and reports true.
func (w *FileWatcher) Check() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	if !info.ModTime().After(w.baseline) {
		w.mu.Unlock()
		return false
	}
	w.baseline = info.ModTime()
	cb := w.onChange
	w.mu.Unlock()

	if cb != nil {
		cb(w.path)
	}
	return true
}

// RestartProcess replaces the current process with a new instance of the
// specified executable, preserving arguments and environment.
// It does not return on success.
func RestartProcess(execPath string) error {
	return syscall.Exec(execPath, os.Args, os.Environ())
}
