package npc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownTemplate is returned when a template ID is not registered.
var ErrUnknownTemplate = errors.New("unknown enemy template")

// Registry holds the loaded enemy templates by ID.
// All methods are safe for concurrent use so that a content watcher can swap
// templates while battles are being created.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates a Registry holding templates.
//
// Postcondition: later duplicates of an ID overwrite earlier ones.
func NewRegistry(templates []*Template) *Registry {
	r := &Registry{templates: make(map[string]*Template)}
	r.Replace(templates)
	return r
}

// LoadRegistry loads every template in dir into a new Registry.
func LoadRegistry(dir string) (*Registry, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	return NewRegistry(templates), nil
}

// Replace atomically swaps the registry contents for templates.
func (r *Registry) Replace(templates []*Template) {
	next := make(map[string]*Template, len(templates))
	for _, t := range templates {
		next[t.ID] = t
	}
	r.mu.Lock()
	r.templates = next
	r.mu.Unlock()
}

// Get returns the template with the given ID.
//
// Postcondition: Returns (tmpl, true) if found, or (nil, false) otherwise.
func (r *Registry) Get(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	return t, ok
}

// IDs returns every registered template ID in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.templates))
	for id := range r.templates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Spawn creates a fresh enemy from the template registered under id.
//
// Postcondition: the enemy's HP equals its MaxHP; wraps ErrUnknownTemplate when id is absent.
func (r *Registry) Spawn(id string) (Enemy, error) {
	t, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("spawning %q: %w", id, ErrUnknownTemplate)
	}
	return New(t)
}
