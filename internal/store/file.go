package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const recordExt = ".json"

// FileRepository stores one JSON file per record in a directory.
type FileRepository struct {
	mu  sync.Mutex
	dir string
}

// OpenDir creates dir if needed and returns a repository rooted there.
func OpenDir(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

// DefaultDir returns the per-user history directory for app.
func DefaultDir(app string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, app, "history"), nil
}

// Dir returns the repository directory.
func (f *FileRepository) Dir() string { return f.dir }

func (f *FileRepository) path(id string) string {
	return filepath.Join(f.dir, id+recordExt)
}

func (f *FileRepository) Put(r *Record) error {
	if err := checkID(r.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, r.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save record: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(r.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (f *FileRepository) Get(id string) (*Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return readRecord(f.path(id))
}

func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse record %s: %w", filepath.Base(path), err)
	}
	return &r, nil
}

func (f *FileRepository) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// List skips and logs unreadable files.
func (f *FileRepository) List() ([]*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	var out []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		r, err := readRecord(filepath.Join(f.dir, e.Name()))
		if err != nil {
			log.Printf("store: skipping %s: %v", e.Name(), err)
			continue
		}
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out, nil
}
