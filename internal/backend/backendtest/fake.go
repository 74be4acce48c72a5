// Package backendtest provides an in-memory backend for tests, mirroring the
// shape of the real sysfs-backed implementations without touching the host.
package backendtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/systune-dev/systune/internal/backend"
)

// Fake is an in-memory Backend. Keys must be seeded before they are
// considered supported, matching how real backends probe the host.
type Fake struct {
	mu          sync.Mutex
	name        string
	values      map[string]string
	writeErrs   map[string]error
	readErrs    map[string]error
	writeOrder  []string
	schema      []byte
	unsupported map[string]bool
}

// NewFake creates a fake backend for one namespace.
func NewFake(name string) *Fake {
	return &Fake{
		name:        name,
		values:      make(map[string]string),
		writeErrs:   make(map[string]error),
		readErrs:    make(map[string]error),
		unsupported: make(map[string]bool),
	}
}

// Seed sets the current live value for a key, marking it supported.
func (f *Fake) Seed(key, value string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return f
}

// MarkUnsupported makes the backend report key as missing on this host.
func (f *Fake) MarkUnsupported(key string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsupported[key] = true
	return f
}

// FailWrite makes subsequent writes of key return err.
func (f *Fake) FailWrite(key string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErrs[key] = err
	return f
}

// FailRead makes subsequent reads of key return err.
func (f *Fake) FailRead(key string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErrs[key] = err
	return f
}

// WithSchema attaches a namespace schema.
func (f *Fake) WithSchema(schema []byte) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schema = schema
	return f
}

// Name returns the fake's namespace.
func (f *Fake) Name() string { return f.name }

// Supports reports whether the key was seeded and not marked unsupported.
func (f *Fake) Supports(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsupported[key] {
		return false
	}
	_, ok := f.values[key]
	return ok
}

// Read returns the stored value for key.
func (f *Fake) Read(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.readErrs[key]; err != nil {
		return "", err
	}
	if f.unsupported[key] {
		return "", fmt.Errorf("%s: %w", key, backend.ErrUnsupported)
	}
	v, ok := f.values[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, backend.ErrUnsupported)
	}
	return v, nil
}

// Write stores the value for key and records the write order.
func (f *Fake) Write(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.writeErrs[key]; err != nil {
		return err
	}
	if f.unsupported[key] {
		return fmt.Errorf("%s: %w", key, backend.ErrUnsupported)
	}
	f.values[key] = value
	f.writeOrder = append(f.writeOrder, key)
	return nil
}

// Schema returns the attached schema, if any.
func (f *Fake) Schema() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schema
}

// Value returns the current stored value for key.
func (f *Fake) Value(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key]
}

// WriteOrder returns the keys written, in order.
func (f *Fake) WriteOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writeOrder))
	copy(out, f.writeOrder)
	return out
}
