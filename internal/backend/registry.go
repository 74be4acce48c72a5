package backend

import (
	"context"
	"fmt"
)

// Registry routes namespaced setting keys to their backend. It also serves
// namespace schemas to profile validation.
type Registry struct {
	backends map[string]Backend
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// DefaultRegistry returns the registry with all built-in Linux backends,
// rooted at root ("" for the live host, a temp dir in tests).
func DefaultRegistry(root string) *Registry {
	r := NewRegistry()
	r.Register(NewCPUBackend(root))
	r.Register(NewSysctlBackend(root))
	r.Register(NewVMBackend(root))
	r.Register(NewDiskBackend(root))
	return r
}

// Register adds a backend for its namespace, replacing any previous one.
func (r *Registry) Register(b Backend) {
	if _, exists := r.backends[b.Name()]; !exists {
		r.order = append(r.order, b.Name())
	}
	r.backends[b.Name()] = b
}

// For returns the backend serving key's namespace.
func (r *Registry) For(key string) (Backend, bool) {
	b, ok := r.backends[namespaceOf(key)]
	return b, ok
}

// Supports reports whether some registered backend can handle key on this
// host. A key with no backend at all is treated the same as an unsupported
// knob: skipped, not fatal.
func (r *Registry) Supports(key string) bool {
	b, ok := r.For(key)
	return ok && b.Supports(key)
}

// Read reads the live value for key through its backend.
func (r *Registry) Read(ctx context.Context, key string) (string, error) {
	b, ok := r.For(key)
	if !ok {
		return "", fmt.Errorf("%s: no backend for namespace %q: %w", key, namespaceOf(key), ErrUnsupported)
	}
	return b.Read(ctx, key)
}

// Write writes the live value for key through its backend.
func (r *Registry) Write(ctx context.Context, key, value string) error {
	b, ok := r.For(key)
	if !ok {
		return fmt.Errorf("%s: no backend for namespace %q: %w", key, namespaceOf(key), ErrUnsupported)
	}
	return b.Write(ctx, key, value)
}

// SettingsSchema implements config.SchemaProvider.
func (r *Registry) SettingsSchema(namespace string) []byte {
	b, ok := r.backends[namespace]
	if !ok {
		return nil
	}
	return b.Schema()
}

// Namespaces returns registered namespaces in registration order.
func (r *Registry) Namespaces() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
