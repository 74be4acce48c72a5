package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"

	"github.com/systune-dev/systune/internal/apperrors"
)

// supportedFormat is the definition format versions this build understands.
// Profiles may omit the field; it defaults to "1".
var supportedFormat = mustConstraint("^1")

const defaultFormat = "1"

func mustConstraint(c string) *semver.Constraints {
	parsed, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return parsed
}

// LoadDefinition loads a single profile definition from a YAML file.
// The profile id is taken from the caller, not the document.
func LoadDefinition(path, id string) (*Definition, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	// resolving symlinks or escaping the intended directory.
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile directory: %w", err)
	}
	defer root.Close()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer file.Close()

	return LoadDefinitionFromReader(file, id)
}

// LoadDefinitionFromReader parses a definition from an io.Reader.
// This is useful for testing with in-memory YAML data.
func LoadDefinitionFromReader(r io.Reader, id string) (*Definition, error) {
	var def Definition

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&def); err != nil {
		return nil, apperrors.NewInvalidDefinitionError(id, fmt.Sprintf("failed to parse YAML: %v", err))
	}

	def.ID = id
	if err := checkFormat(&def); err != nil {
		return nil, err
	}

	return &def, nil
}

// checkFormat verifies the declared format version is one this build can
// interpret.
func checkFormat(def *Definition) error {
	declared := def.Format
	if declared == "" {
		declared = defaultFormat
	}

	version, err := semver.NewVersion(declared)
	if err != nil {
		return apperrors.NewInvalidDefinitionError(def.ID,
			fmt.Sprintf("format %q is not a valid version", declared))
	}
	if !supportedFormat.Check(version) {
		return apperrors.NewInvalidDefinitionError(def.ID,
			fmt.Sprintf("format %s is not supported (want %s)", declared, supportedFormat))
	}
	return nil
}
