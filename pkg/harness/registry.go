/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: registry.go
Description: Static harness registry. Harnesses are registered once by name at integration
time and looked up by the engine and the command-line tools.
*/

package harness

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kleascm/akaylee-boundary/pkg/boundary"
)

var (
	ErrUnknownHarness   = errors.New("unknown harness")
	ErrDuplicateHarness = errors.New("harness already registered")
)

// Entry describes a registered harness
type Entry struct {
	Name        string
	Description string
	Func        boundary.Harness
}

// Registry maps harness names to entries. The zero value is ready to use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a harness under name
func (r *Registry) Register(name, description string, fn boundary.Harness) error {
	if name == "" {
		return fmt.Errorf("harness name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("harness %q: function must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[string]Entry)
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHarness, name)
	}
	r.entries[name] = Entry{Name: name, Description: description, Func: fn}
	return nil
}

// Lookup returns the harness registered under name
func (r *Registry) Lookup(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownHarness, name)
	}
	return e, nil
}

// List returns all entries sorted by name
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry holding the built-in harnesses
func Default() *Registry { return defaultRegistry }

// Register adds a harness to the default registry
func Register(name, description string, fn boundary.Harness) error {
	return defaultRegistry.Register(name, description, fn)
}

// MustRegister is Register for package init code; it panics on error.
func MustRegister(name, description string, fn boundary.Harness) {
	if err := Register(name, description, fn); err != nil {
		panic(err)
	}
}

// Lookup finds a harness in the default registry
func Lookup(name string) (Entry, error) { return defaultRegistry.Lookup(name) }

// List returns the default registry's entries
func List() []Entry { return defaultRegistry.List() }
