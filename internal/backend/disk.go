package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskBackend tunes block device queue parameters under /sys/block. Reads
// come from the first eligible device; writes fan out to all of them.
// Loop and ram devices are excluded.
type DiskBackend struct {
	root string
}

// NewDiskBackend creates a disk backend rooted at root ("" = live host).
func NewDiskBackend(root string) *DiskBackend {
	return &DiskBackend{root: root}
}

// Name returns the namespace served by this backend.
func (b *DiskBackend) Name() string { return "disk" }

func (b *DiskBackend) blockDir() string {
	return filepath.Join(b.root, "/sys/block")
}

// queueFile maps a disk sub-key to its queue attribute file name.
func queueFile(key string) (string, bool) {
	switch subKeyOf(key) {
	case "readahead":
		return "read_ahead_kb", true
	case "scheduler":
		return "scheduler", true
	default:
		return "", false
	}
}

// Supports reports whether at least one block device exposes the attribute.
func (b *DiskBackend) Supports(key string) bool {
	file, ok := queueFile(key)
	if !ok {
		return false
	}
	devices, err := b.listDevices()
	if err != nil {
		return false
	}
	for _, dev := range devices {
		if _, err := os.Stat(filepath.Join(b.blockDir(), dev, "queue", file)); err == nil {
			return true
		}
	}
	return false
}

// Read returns the attribute value of the first eligible device.
func (b *DiskBackend) Read(_ context.Context, key string) (string, error) {
	file, ok := queueFile(key)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrUnsupported)
	}
	devices, err := b.listDevices()
	if err != nil {
		return "", err
	}
	for _, dev := range devices {
		path := filepath.Join(b.blockDir(), dev, "queue", file)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return readTrimmed(path)
	}
	return "", fmt.Errorf("%s: %w", key, ErrUnsupported)
}

// Write applies the attribute value to every eligible device. Devices
// lacking the file are skipped; a failing write on a present file aborts.
func (b *DiskBackend) Write(_ context.Context, key, value string) error {
	file, ok := queueFile(key)
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrUnsupported)
	}
	devices, err := b.listDevices()
	if err != nil {
		return err
	}

	wrote := false
	for _, dev := range devices {
		path := filepath.Join(b.blockDir(), dev, "queue", file)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.WriteFile(path, []byte(value+"\n"), 0o644); err != nil {
			return fmt.Errorf("device %s: %w", dev, err)
		}
		wrote = true
	}

	if !wrote {
		return fmt.Errorf("%s: %w", key, ErrUnsupported)
	}
	return nil
}

// listDevices returns tunable block devices, skipping loop and ram devices.
func (b *DiskBackend) listDevices() ([]string, error) {
	entries, err := os.ReadDir(b.blockDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var devices []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}
		devices = append(devices, name)
	}
	return devices, nil
}

// Schema returns the value schema for the disk namespace.
func (b *DiskBackend) Schema() []byte {
	return []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "readahead": {"type": "integer", "minimum": 0},
    "scheduler": {"type": "string"}
  },
  "additionalProperties": false
}`)
}
