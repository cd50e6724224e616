// Package prefs keeps the viewer's preferences in a JSON file.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const fileName = "preferences.json"

// Window keys. Session and extraction settings keep their own keys in
// package app.
const (
	KeyZoom    = "zoom"
	KeyWindowW = "window_width"
	KeyWindowH = "window_height"
)

// Prefs is a string or number valued map backed by one file.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Dir returns the per-user configuration directory for app.
func Dir(app string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, app)
}

// Load reads <user config dir>/<app>/preferences.json.
func Load(app string) *Prefs {
	return LoadFrom(filepath.Join(Dir(app), fileName))
}

// LoadFrom reads path. A missing or corrupt file yields empty preferences
// that are written to path on Save.
func LoadFrom(path string) *Prefs {
	p := &Prefs{values: map[string]interface{}{}, path: path}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &p.values); err != nil {
			p.values = map[string]interface{}{}
		}
	}
	return p
}

func (p *Prefs) Path() string { return p.path }

// Save replaces the file through a temporary sibling so a crash never
// leaves it half written.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}

// Float returns a numeric preference, or fallback when unset.
func (p *Prefs) Float(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if n, ok := p.values[key].(float64); ok {
		return n
	}
	return fallback
}

func (p *Prefs) SetFloat(key string, val float64) {
	p.set(key, val)
}

// String returns a string preference, or "" when unset.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, _ := p.values[key].(string)
	return s
}

// SetString stores val; an empty val removes the key.
func (p *Prefs) SetString(key, val string) {
	if val == "" {
		p.mu.Lock()
		delete(p.values, key)
		p.mu.Unlock()
		return
	}
	p.set(key, val)
}

func (p *Prefs) set(key string, val interface{}) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}
