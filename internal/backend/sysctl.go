package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SysctlBackend reads and writes kernel parameters under /proc/sys. Keys map
// directly: sysctl.net.core.somaxconn -> /proc/sys/net/core/somaxconn.
type SysctlBackend struct {
	root string
}

// NewSysctlBackend creates a sysctl backend rooted at root ("" = live host).
func NewSysctlBackend(root string) *SysctlBackend {
	return &SysctlBackend{root: root}
}

// Name returns the namespace served by this backend.
func (b *SysctlBackend) Name() string { return "sysctl" }

func (b *SysctlBackend) keyPath(key string) string {
	parts := strings.Split(subKeyOf(key), ".")
	return filepath.Join(append([]string{b.root, "/proc/sys"}, parts...)...)
}

// Supports reports whether the parameter file exists on this host.
func (b *SysctlBackend) Supports(key string) bool {
	if subKeyOf(key) == "" {
		return false
	}
	_, err := os.Stat(b.keyPath(key))
	return err == nil
}

// Read returns the current kernel parameter value.
func (b *SysctlBackend) Read(_ context.Context, key string) (string, error) {
	return readTrimmed(b.keyPath(key))
}

// Write sets the kernel parameter.
func (b *SysctlBackend) Write(_ context.Context, key, value string) error {
	if err := writeValue(b.keyPath(key), value); err != nil {
		return fmt.Errorf("sysctl %s: %w", subKeyOf(key), err)
	}
	return nil
}

// Schema returns nil: sysctl keys are open-ended and their value shapes are
// kernel-defined, so values pass through unvalidated.
func (b *SysctlBackend) Schema() []byte { return nil }

// VMBackend is shorthand for the /proc/sys/vm subtree: vm.swappiness reads
// the same file as sysctl.vm.swappiness. Kept as its own namespace because
// profile authors overwhelmingly tune vm knobs.
type VMBackend struct {
	sysctl *SysctlBackend
}

// NewVMBackend creates a vm backend rooted at root ("" = live host).
func NewVMBackend(root string) *VMBackend {
	return &VMBackend{sysctl: NewSysctlBackend(root)}
}

// Name returns the namespace served by this backend.
func (b *VMBackend) Name() string { return "vm" }

// expand rewrites vm.X into the equivalent sysctl key.
func (b *VMBackend) expand(key string) string {
	return "sysctl.vm." + subKeyOf(key)
}

// Supports reports whether the vm parameter exists on this host.
func (b *VMBackend) Supports(key string) bool {
	return subKeyOf(key) != "" && b.sysctl.Supports(b.expand(key))
}

// Read returns the current vm parameter value.
func (b *VMBackend) Read(ctx context.Context, key string) (string, error) {
	return b.sysctl.Read(ctx, b.expand(key))
}

// Write sets the vm parameter.
func (b *VMBackend) Write(ctx context.Context, key, value string) error {
	return b.sysctl.Write(ctx, b.expand(key), value)
}

// Schema returns the value schema for the common vm knobs.
func (b *VMBackend) Schema() []byte {
	return []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "swappiness": {"type": "integer", "minimum": 0, "maximum": 200},
    "dirty_ratio": {"type": "integer", "minimum": 0, "maximum": 100},
    "dirty_background_ratio": {"type": "integer", "minimum": 0, "maximum": 100},
    "laptop_mode": {"type": "integer", "minimum": 0}
  }
}`)
}
