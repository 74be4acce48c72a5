// Package backend contains the pluggable per-domain setting backends and the
// registry that routes namespaced keys to them. A backend knows how to read
// and write one category of live system setting; everything above it treats
// settings as opaque key/value pairs.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnsupported is returned when a key names a knob this host does not
// expose. Unsupported keys are excluded from snapshot and apply, recorded
// but not fatal.
var ErrUnsupported = errors.New("setting not supported on this host")

// Backend reads and writes live values for one setting namespace.
type Backend interface {
	// Name returns the namespace this backend serves (the first dotted
	// segment of its keys).
	Name() string

	// Supports reports whether this host exposes the knob behind key.
	Supports(key string) bool

	// Read returns the current live value of key.
	Read(ctx context.Context, key string) (string, error)

	// Write sets key to value on the live system.
	Write(ctx context.Context, key, value string) error

	// Schema returns a JSON Schema describing valid values for this
	// namespace's settings, or nil when values pass through unvalidated.
	Schema() []byte
}

// namespaceOf returns the backend-selecting first segment of a dotted key.
func namespaceOf(key string) string {
	namespace, _, _ := strings.Cut(key, ".")
	return namespace
}

// subKeyOf returns the key with its namespace prefix stripped.
func subKeyOf(key string) string {
	_, rest, _ := strings.Cut(key, ".")
	return rest
}

// readTrimmed reads a small sysfs/procfs file and strips trailing whitespace.
func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, ErrUnsupported)
		}
		return "", err
	}
	return strings.TrimRight(string(data), "\n\t "), nil
}

// writeValue writes a value to a sysfs/procfs file with a trailing newline,
// the form the kernel expects.
func writeValue(path, value string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	return os.WriteFile(path, []byte(value+"\n"), 0o644)
}
