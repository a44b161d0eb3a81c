package provider

import (
	"fmt"
	"sync"
)

// Registry resolves capability backends by name. Factories are registered at
// startup; Create builds an instance on first use and caches it, so repeated
// lookups of the same backend share one provider.
type Registry[T Provider] struct {
	mu        sync.Mutex
	factories map[string]Factory[T]
	instances map[string]T
}

// NewRegistry creates a new empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		instances: make(map[string]T),
	}
}

// RegisterFactory registers a named factory for creating providers. A later
// registration under the same name replaces the earlier one.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create returns the provider registered under name, building it through its
// factory on first use. The config map is consulted only by the call that
// builds the instance.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inst, ok := r.instances[name]; ok {
		return inst, nil
	}
	factory, ok := r.factories[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider factory %q not registered", name)
	}
	inst, err := factory(cfg)
	if err != nil {
		var zero T
		return zero, err
	}
	r.instances[name] = inst
	return inst, nil
}
