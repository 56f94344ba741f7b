package persona

import (
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned when a persona key is unknown.
var ErrNotFound = fmt.Errorf("persona not found")

// Registry holds the loaded personas. Registration happens at startup;
// reads are concurrent across sessions.
type Registry struct {
	mu       sync.RWMutex
	personas map[string]*Persona
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{personas: make(map[string]*Persona)}
}

// LoadBuiltIn registers the built-in personas.
func (r *Registry) LoadBuiltIn() {
	for _, p := range Builtins() {
		r.Register(p)
	}
}

// Register adds a persona, replacing any existing one with the same key.
func (r *Registry) Register(p *Persona) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.personas[p.Key] = p
}

// Get retrieves a persona by key.
func (r *Registry) Get(key string) (*Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.personas[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return p, nil
}

// Default returns the play-by-play persona.
func (r *Registry) Default() *Persona {
	p, err := r.Get(KeyDefault)
	if err != nil {
		// Registry without the default persona is a configuration bug;
		// fall back to any registered persona.
		for _, candidate := range r.List() {
			return candidate
		}
		return &Persona{Key: KeyDefault, Label: "Commentator"}
	}
	return p
}

// List returns all personas sorted by key.
func (r *Registry) List() []*Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Persona, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
