package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CPUBackend tunes per-CPU frequency scaling knobs through sysfs. Reads come
// from cpu0; writes fan out to every present CPU so the whole package runs
// with the same policy.
type CPUBackend struct {
	root string
}

// NewCPUBackend creates a CPU backend rooted at root ("" = live host).
func NewCPUBackend(root string) *CPUBackend {
	return &CPUBackend{root: root}
}

// Name returns the namespace served by this backend.
func (b *CPUBackend) Name() string { return "cpu" }

func (b *CPUBackend) cpuDir() string {
	return filepath.Join(b.root, "/sys/devices/system/cpu")
}

// keyPath returns the sysfs path of key relative to one CPU directory.
func (b *CPUBackend) keyPath(cpu, key string) (string, bool) {
	switch subKeyOf(key) {
	case "governor":
		return filepath.Join(b.cpuDir(), cpu, "cpufreq", "scaling_governor"), true
	case "energy_perf_bias":
		return filepath.Join(b.cpuDir(), cpu, "power", "energy_perf_bias"), true
	default:
		return "", false
	}
}

// Supports reports whether cpu0 exposes the knob behind key.
func (b *CPUBackend) Supports(key string) bool {
	path, ok := b.keyPath("cpu0", key)
	if !ok {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Read returns cpu0's value for key.
func (b *CPUBackend) Read(_ context.Context, key string) (string, error) {
	path, ok := b.keyPath("cpu0", key)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrUnsupported)
	}
	return readTrimmed(path)
}

// Write applies the value to every CPU exposing the knob. A CPU that lacks
// the file (offline, heterogeneous package) is skipped; a write error on a
// present file fails the whole batch.
func (b *CPUBackend) Write(_ context.Context, key, value string) error {
	cpus, err := b.listCPUs()
	if err != nil {
		return err
	}
	if len(cpus) == 0 {
		return fmt.Errorf("%s: %w", key, ErrUnsupported)
	}

	wrote := false
	for _, cpu := range cpus {
		path, ok := b.keyPath(cpu, key)
		if !ok {
			return fmt.Errorf("%s: %w", key, ErrUnsupported)
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.WriteFile(path, []byte(value+"\n"), 0o644); err != nil {
			return fmt.Errorf("cpu %s: %w", cpu, err)
		}
		wrote = true
	}

	if !wrote {
		return fmt.Errorf("%s: %w", key, ErrUnsupported)
	}
	return nil
}

// listCPUs returns cpu0..cpuN entries in the sysfs CPU directory.
func (b *CPUBackend) listCPUs() ([]string, error) {
	entries, err := os.ReadDir(b.cpuDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cpus []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "cpu") {
			continue
		}
		rest := strings.TrimPrefix(name, "cpu")
		if rest == "" || strings.TrimLeft(rest, "0123456789") != "" {
			continue
		}
		cpus = append(cpus, name)
	}
	return cpus, nil
}

// Schema returns the value schema for the cpu namespace.
func (b *CPUBackend) Schema() []byte {
	return []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "governor": {
      "type": "string",
      "enum": ["performance", "powersave", "ondemand", "conservative", "schedutil", "userspace"]
    },
    "energy_perf_bias": {
      "type": ["string", "integer"]
    }
  },
  "additionalProperties": false
}`)
}
