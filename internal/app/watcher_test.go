package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	w, err := NewFileWatcher(path, time.Hour)
	require.NoError(t, err)

	var fired []string
	w.OnChange(func(p string) { fired = append(fired, p) })
	assert.False(t, w.Check())

	later := w.Baseline().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.True(t, w.Check())
	assert.False(t, w.Check(), "baseline advanced")
	assert.Len(t, fired, 1)
}

func TestFileWatcherMissingFile(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "nope"), time.Second)
	assert.Error(t, err)
}

func TestFileWatcherStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	w, err := NewFileWatcher(path, 10*time.Millisecond)
	require.NoError(t, err)

	done := make(chan string, 1)
	w.OnChange(func(p string) { done <- p })
	w.Start()
	defer w.Stop()

	later := w.Baseline().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	select {
	case p := <-done:
		assert.Equal(t, w.Path(), p)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire")
	}
	w.Stop()
}
