package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/systune-dev/systune/internal/config"
	"github.com/systune-dev/systune/internal/switcher"
)

// Format selects an output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format %q (want table, json, or yaml)", s)
	}
}

// listing is the machine-readable shape of the list command.
type listing struct {
	Profiles []config.Summary `json:"profiles" yaml:"profiles"`
	Active   string           `json:"active" yaml:"active"`
}

// JSONFormatter writes machine-readable JSON.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// FormatList writes the profile listing as JSON.
func (f *JSONFormatter) FormatList(profiles []config.Summary, active string) error {
	return f.encode(listing{Profiles: profiles, Active: active})
}

// FormatActive writes the active record as JSON.
func (f *JSONFormatter) FormatActive(active string) error {
	return f.encode(map[string]string{"active": active})
}

// FormatVerify writes a verification report as JSON.
func (f *JSONFormatter) FormatVerify(report *switcher.VerifyReport) error {
	return f.encode(report)
}

func (f *JSONFormatter) encode(v any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAMLFormatter writes machine-readable YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// FormatList writes the profile listing as YAML.
func (f *YAMLFormatter) FormatList(profiles []config.Summary, active string) error {
	return yaml.NewEncoder(f.writer).Encode(listing{Profiles: profiles, Active: active})
}

// FormatActive writes the active record as YAML.
func (f *YAMLFormatter) FormatActive(active string) error {
	return yaml.NewEncoder(f.writer).Encode(map[string]string{"active": active})
}

// FormatVerify writes a verification report as YAML.
func (f *YAMLFormatter) FormatVerify(report *switcher.VerifyReport) error {
	return yaml.NewEncoder(f.writer).Encode(report)
}

// Formatter renders each of the tool's outputs.
type Formatter interface {
	FormatList(profiles []config.Summary, active string) error
	FormatActive(active string) error
	FormatVerify(report *switcher.VerifyReport) error
}

// New returns the formatter for a format.
func New(format Format, w io.Writer) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(w)
	case FormatYAML:
		return NewYAMLFormatter(w)
	default:
		return NewTableFormatter(w)
	}
}
