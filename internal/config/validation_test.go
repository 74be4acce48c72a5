package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systune-dev/systune/internal/apperrors"
)

// schemaProviderFunc adapts a function to the SchemaProvider interface.
type schemaProviderFunc func(namespace string) []byte

func (f schemaProviderFunc) SettingsSchema(namespace string) []byte { return f(namespace) }

func Test_Store_Validate_BuiltinsAreValid(t *testing.T) {
	t.Parallel()

	store := NewStore()
	require.NoError(t, store.Load())
	require.NoError(t, store.Validate(nil))
}

func Test_Store_Validate_MalformedSettingKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProfile(t, dir, "bad-keys", `
profile:
  summary: malformed keys
settings:
  governor: performance
`)

	store := NewStore(dir)
	require.NoError(t, store.Load())

	err := store.Validate(nil)
	var invalid *apperrors.InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "bad-keys", invalid.Profile)
	assert.Contains(t, err.Error(), `malformed setting key "governor"`)
}

func Test_Store_Validate_UnknownParent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProfile(t, dir, "orphan", `
profile:
  summary: parent is missing
  parent: no-such-base
settings:
  vm.swappiness: 10
`)

	store := NewStore(dir)
	require.NoError(t, store.Load())

	err := store.Validate(nil)
	var invalid *apperrors.InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), `unknown parent profile "no-such-base"`)
}

func Test_Store_Validate_CyclicInheritance(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProfile(t, dir, "ping", `
profile:
  summary: half a cycle
  parent: pong
settings:
  vm.swappiness: 10
`)
	writeProfile(t, dir, "pong", `
profile:
  summary: other half
  parent: ping
settings:
  vm.swappiness: 20
`)

	store := NewStore(dir)
	require.NoError(t, store.Load())

	err := store.Validate(nil)
	var invalid *apperrors.InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "cyclic inheritance")
}

func Test_Store_Validate_SelfParentIsACycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProfile(t, dir, "ouroboros", `
profile:
  summary: self-referential
  parent: ouroboros
settings:
  vm.swappiness: 10
`)

	store := NewStore(dir)
	require.NoError(t, store.Load())

	var invalid *apperrors.InvalidDefinitionError
	require.ErrorAs(t, store.Validate(nil), &invalid)
}

func Test_Store_Validate_SchemaViolation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProfile(t, dir, "over-swappy", `
profile:
  summary: value out of range
settings:
  vm.swappiness: 9999
`)

	provider := schemaProviderFunc(func(namespace string) []byte {
		if namespace != "vm" {
			return nil
		}
		return []byte(`{
  "type": "object",
  "properties": {
    "swappiness": {"type": "integer", "minimum": 0, "maximum": 200}
  }
}`)
	})

	store := NewStore(dir)
	require.NoError(t, store.Load())

	err := store.Validate(provider)
	var invalid *apperrors.InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "over-swappy", invalid.Profile)
	assert.Contains(t, err.Error(), "swappiness")
}

func Test_Store_Validate_SchemalessNamespacePassesThrough(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProfile(t, dir, "free-form", `
profile:
  summary: sysctl values are opaque
settings:
  sysctl.net.ipv4.tcp_rmem: 4096 87380 16777216
`)

	provider := schemaProviderFunc(func(string) []byte { return nil })

	store := NewStore(dir)
	require.NoError(t, store.Load())
	require.NoError(t, store.Validate(provider))
}
