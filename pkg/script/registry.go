package script

import (
	"context"
	"fmt"
	"sync"
)

// MethodProvider resolves user-defined script methods by name.
type MethodProvider interface {
	Call(ctx context.Context, name string, args []any) (any, error)
}

// MethodFunc is the signature for a user method implementation.
// It receives the evaluated argument list and returns a script value
// (bool, int or string) or an error.
type MethodFunc func(ctx context.Context, args []any) (any, error)

// Registry is the default MethodProvider: a named set of MethodFuncs.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]MethodFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		methods: make(map[string]MethodFunc),
	}
}

// Register adds a method to the registry.
// If a method with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn MethodFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[name] = fn
}

// Call looks up a method by name and invokes it.
// Returns an error if the method is not registered.
func (r *Registry) Call(ctx context.Context, name string, args []any) (any, error) {
	r.mu.RLock()
	fn, ok := r.methods[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("method not found: %s", name)
	}

	return fn(ctx, args)
}

// Names returns the registered method names (unordered).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.methods))
	for name := range r.methods {
		out = append(out, name)
	}
	return out
}
