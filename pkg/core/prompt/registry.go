// Package prompt is a small registry of system prompts. Prompts ship with
// compiled-in defaults and can be overridden from JSON files at startup, so
// wording changes need no rebuild.
package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Template is one named system prompt.
type Template struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
	Version      string `json:"version"`
}

// Registry holds loaded prompts.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*Template
}

var (
	globalRegistry *Registry
	once           sync.Once
)

// Get returns the global registry singleton with defaults registered.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = &Registry{prompts: make(map[string]*Template)}
		registerDefaults(globalRegistry)
	})
	return globalRegistry
}

// Register adds or replaces a prompt.
func (r *Registry) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[t.ID] = t
	return nil
}

// SystemPrompt returns the prompt text for an id, empty if unknown.
func (r *Registry) SystemPrompt(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.prompts[id]; ok {
		return t.SystemPrompt
	}
	return ""
}

// Count reports the number of registered prompts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}

// LoadFromDirectory overrides defaults with any *.json prompt files found
// under dir. A missing directory is not an error.
func (r *Registry) LoadFromDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read prompt dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		var t Template
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("failed to parse %s: %w", e.Name(), err)
		}
		if err := r.Register(&t); err != nil {
			return err
		}
	}
	return nil
}
