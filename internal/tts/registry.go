package tts

import (
	"fmt"
	"sync"
)

// BuilderFunc constructs a synthesizer for one model of a backend.
type BuilderFunc func(model string) (Synthesizer, error)

// Registry maps backend identifiers to synthesizer builders and caches the
// constructed clients for the process lifetime. Construction can be costly
// (voice-table loading, credential checks), so one instance per
// provider/model pair is shared across runs. Cached instances are treated
// as read-only after initialization.
type Registry struct {
	mu       sync.Mutex
	builders map[string]BuilderFunc
	clients  map[string]Synthesizer
}

// NewRegistry creates an empty synthesizer registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
		clients:  make(map[string]Synthesizer),
	}
}

// Register installs a builder for the given backend identifier.
func (r *Registry) Register(provider string, build BuilderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[provider] = build
}

// Providers lists the registered backend identifiers.
func (r *Registry) Providers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}

// Synthesizer resolves a backend identifier and model to a cached client,
// constructing it on first use. A missing backend is a single, immediate
// lookup error rather than a scattered dispatch failure.
func (r *Registry) Synthesizer(provider, model string) (Synthesizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := provider + "/" + model
	if c, ok := r.clients[key]; ok {
		return c, nil
	}

	build, ok := r.builders[provider]
	if !ok {
		return nil, fmt.Errorf("tts backend %q not configured", provider)
	}

	c, err := build(model)
	if err != nil {
		return nil, fmt.Errorf("initialize tts backend %s: %w", key, err)
	}
	r.clients[key] = c
	return c, nil
}
