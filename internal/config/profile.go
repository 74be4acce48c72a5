// Package config loads and validates system-tuning profile definitions.
// Definitions are YAML files resolved from an ordered list of profile
// directories, with a built-in set of defaults shipped in the binary.
package config

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Definition is a single named tuning profile as loaded from disk.
// Immutable once loaded for the duration of a run.
type Definition struct {
	// ID is derived from the profile's directory or file name, never from
	// the document body, so a definition cannot masquerade as another.
	ID string `yaml:"-"`

	Meta     Metadata `yaml:"profile"`
	Format   string   `yaml:"format,omitempty"`
	Settings Settings `yaml:"settings"`
}

// Metadata carries the human-facing fields of a profile.
type Metadata struct {
	Summary string `yaml:"summary"`
	Parent  string `yaml:"parent,omitempty"`
}

// Summary is the listing row for one profile.
type Summary struct {
	ID      string `json:"id" yaml:"id"`
	Summary string `json:"summary" yaml:"summary"`
	Parent  string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// HasParent reports whether the definition inherits from another profile.
func (d *Definition) HasParent() bool {
	return d.Meta.Parent != ""
}

// Setting is one key/value pair. Keys are namespaced with dots; the first
// segment selects the backend (cpu.governor, sysctl.vm.dirty_ratio, ...).
type Setting struct {
	Key   string
	Value Value
}

// Settings is an ordered list of settings, preserving YAML document order.
// Order matters: when a profile repeats a key, the last occurrence wins, and
// the apply order follows the document.
type Settings []Setting

// Get returns the value for key and whether it is present. When a key is
// repeated the last occurrence is returned.
func (s Settings) Get(key string) (Value, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Key == key {
			return s[i].Value, true
		}
	}
	return Value{}, false
}

// Keys returns the setting keys in document order, first occurrence only.
func (s Settings) Keys() []string {
	seen := make(map[string]bool, len(s))
	keys := make([]string, 0, len(s))
	for _, st := range s {
		if !seen[st.Key] {
			seen[st.Key] = true
			keys = append(keys, st.Key)
		}
	}
	return keys
}

// UnmarshalYAML decodes the settings mapping preserving document order.
func (s *Settings) UnmarshalYAML(data []byte) error {
	var ms yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &ms, yaml.UseOrderedMap()); err != nil {
		return fmt.Errorf("settings must be a mapping: %w", err)
	}

	out := make(Settings, 0, len(ms))
	for _, item := range ms {
		key, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("setting key %v is not a string", item.Key)
		}
		val, err := valueOf(item.Value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
		out = append(out, Setting{Key: key, Value: val})
	}

	*s = out
	return nil
}

// Value is an opaque scalar setting value: string, integer, or boolean.
type Value struct {
	raw any
}

// StringValue wraps a string setting value.
func StringValue(v string) Value { return Value{raw: v} }

// IntValue wraps an integer setting value.
func IntValue(v int64) Value { return Value{raw: v} }

// BoolValue wraps a boolean setting value.
func BoolValue(v bool) Value { return Value{raw: v} }

// valueOf converts a decoded YAML scalar into a Value, rejecting
// non-scalar shapes (nested mappings, sequences, null).
func valueOf(v any) (Value, error) {
	switch t := v.(type) {
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case int:
		return IntValue(int64(t)), nil
	case int64:
		return IntValue(t), nil
	case uint64:
		return IntValue(int64(t)), nil
	default:
		return Value{}, fmt.Errorf("value %v (%T) is not a scalar string, integer, or boolean", v, v)
	}
}

// Raw returns the underlying scalar for serialization.
func (v Value) Raw() any { return v.raw }

// String returns the canonical textual form, which is what backends write
// to the live system.
func (v Value) String() string {
	switch t := v.raw.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// MarshalJSON renders the raw scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch t := v.raw.(type) {
	case string:
		return strconv.AppendQuote(nil, t), nil
	case int64:
		return strconv.AppendInt(nil, t, 10), nil
	case bool:
		return strconv.AppendBool(nil, t), nil
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML renders the raw scalar.
func (v Value) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(v.raw)
}
