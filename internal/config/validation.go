package config

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/systune-dev/systune/internal/apperrors"
)

// Setting keys are dotted: a namespace segment selecting the backend,
// followed by one or more sub-key segments.
var settingKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-zA-Z0-9_-]+)+$`)

// SchemaProvider supplies the JSON Schema for one setting namespace.
// This decouples validation from the concrete backend registry.
type SchemaProvider interface {
	// SettingsSchema returns the schema for a namespace, or nil when the
	// namespace declares none (values pass through unvalidated).
	SettingsSchema(namespace string) []byte
}

// Validate checks every loaded definition: setting key syntax, parent
// references, inheritance cycles, and (when a provider is given) setting
// values against backend schemas. All problems are collected before failing.
func (s *Store) Validate(provider SchemaProvider) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		def := s.profiles[id]

		var details []string
		details = append(details, validateSettings(def, provider)...)
		details = append(details, s.validateParentLocked(def)...)

		if len(details) > 0 {
			return apperrors.NewInvalidDefinitionError(id, "definition is invalid", details...)
		}
	}

	return nil
}

// validateSettings checks key syntax and schema conformance for one profile.
func validateSettings(def *Definition, provider SchemaProvider) []string {
	var details []string

	for _, st := range def.Settings {
		if !settingKeyPattern.MatchString(st.Key) {
			details = append(details, fmt.Sprintf("malformed setting key %q", st.Key))
		}
	}

	if provider == nil {
		return details
	}

	for namespace, values := range groupByNamespace(def.Settings) {
		raw := provider.SettingsSchema(namespace)
		if raw == nil {
			continue
		}
		if err := validateAgainstSchema(namespace, raw, values); err != nil {
			details = append(details, err.Error())
		}
	}

	return details
}

// validateParentLocked checks the parent reference and walks the chain with
// a bounded guard so a cyclic graph fails fast instead of looping.
func (s *Store) validateParentLocked(def *Definition) []string {
	if !def.HasParent() {
		return nil
	}

	var details []string
	chain := []string{def.ID}
	seen := map[string]bool{def.ID: true}

	current := def
	for current.HasParent() {
		parent, ok := s.profiles[current.Meta.Parent]
		if !ok {
			details = append(details, fmt.Sprintf("unknown parent profile %q", current.Meta.Parent))
			return details
		}
		if seen[parent.ID] || len(chain) > len(s.profiles) {
			chain = append(chain, parent.ID)
			details = append(details, fmt.Sprintf("cyclic inheritance: %s", strings.Join(chain, " -> ")))
			return details
		}
		seen[parent.ID] = true
		chain = append(chain, parent.ID)
		current = parent
	}

	return details
}

// groupByNamespace buckets settings by their first key segment, trimming the
// namespace prefix so sub-keys line up with schema property names.
func groupByNamespace(settings Settings) map[string]map[string]any {
	groups := make(map[string]map[string]any)
	for _, st := range settings {
		namespace, rest, ok := strings.Cut(st.Key, ".")
		if !ok {
			continue
		}
		if groups[namespace] == nil {
			groups[namespace] = make(map[string]any)
		}
		groups[namespace][rest] = st.Value.Raw()
	}
	return groups
}

// validateAgainstSchema compiles a namespace schema and checks the grouped
// setting values against it.
func validateAgainstSchema(namespace string, raw []byte, values map[string]any) error {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	resource := fmt.Sprintf("schema://%s.json", namespace)

	if err := compiler.AddResource(resource, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("namespace %s: invalid schema: %v", namespace, err)
	}
	schema, err := compiler.Compile(resource)
	if err != nil {
		return fmt.Errorf("namespace %s: invalid schema: %v", namespace, err)
	}

	// jsonschema validates against JSON-decoded values; normalize ints.
	normalized := make(map[string]any, len(values))
	for k, v := range values {
		if i, ok := v.(int64); ok {
			normalized[k] = float64(i)
		} else {
			normalized[k] = v
		}
	}

	if err := schema.Validate(normalized); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("namespace %s: %s", namespace, formatSchemaError(validationErr))
		}
		return fmt.Errorf("namespace %s: %v", namespace, err)
	}

	return nil
}

// formatSchemaError flattens a jsonschema validation error tree into a
// single readable line.
func formatSchemaError(err *jsonschema.ValidationError) string {
	var parts []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := strings.TrimPrefix(e.InstanceLocation, "/")
			if location == "" {
				parts = append(parts, e.Message)
			} else {
				parts = append(parts, fmt.Sprintf("%s: %s", location, e.Message))
			}
			return
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	return strings.Join(parts, "; ")
}
