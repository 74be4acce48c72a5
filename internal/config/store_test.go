package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systune-dev/systune/internal/apperrors"
)

func writeProfile(t *testing.T, dir, id, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".yaml"), []byte(body), 0o644))
}

func Test_Store_LoadsBuiltinProfiles(t *testing.T) {
	t.Parallel()

	store := NewStore()
	require.NoError(t, store.Load())

	expected := []string{
		"balanced", "desktop", "latency-performance", "network-latency",
		"network-throughput", "powersave", "throughput-performance",
		"virtual-guest", "virtual-host",
	}

	summaries := store.List()
	ids := make([]string, len(summaries))
	for i, s := range summaries {
		ids[i] = s.ID
	}
	assert.Equal(t, expected, ids)

	balanced, err := store.Get("balanced")
	require.NoError(t, err)
	assert.Equal(t, "General non-specialized tuned profile", balanced.Meta.Summary)
	assert.False(t, balanced.HasParent())
}

func Test_Store_Get_UnknownProfileFails(t *testing.T) {
	t.Parallel()

	store := NewStore()
	require.NoError(t, store.Load())

	_, err := store.Get("no-such-profile")
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no-such-profile", notFound.Profile)
}

func Test_Store_Has(t *testing.T) {
	t.Parallel()

	store := NewStore()
	require.NoError(t, store.Load())

	assert.True(t, store.Has("balanced"))
	assert.False(t, store.Has("no-such-profile"))
}

func Test_Store_DirectoryProfilesExtendBuiltins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProfile(t, dir, "site-local", `
profile:
  summary: Site-specific tuning
  parent: balanced
settings:
  vm.swappiness: 5
`)

	store := NewStore(dir)
	require.NoError(t, store.Load())

	def, err := store.Get("site-local")
	require.NoError(t, err)
	assert.Equal(t, "balanced", def.Meta.Parent)

	// New profiles list after the builtins.
	summaries := store.List()
	assert.Equal(t, "site-local", summaries[len(summaries)-1].ID)
}

func Test_Store_LaterDirectoryShadowsEarlier(t *testing.T) {
	t.Parallel()

	distro := t.TempDir()
	site := t.TempDir()
	writeProfile(t, distro, "web-server", `
profile:
  summary: distro version
settings:
  vm.swappiness: 10
`)
	writeProfile(t, site, "web-server", `
profile:
  summary: site override
settings:
  vm.swappiness: 1
`)

	store := NewStore(distro, site)
	require.NoError(t, store.Load())

	def, err := store.Get("web-server")
	require.NoError(t, err)
	assert.Equal(t, "site override", def.Meta.Summary)

	v, ok := def.Settings.Get("vm.swappiness")
	require.True(t, ok)
	assert.Equal(t, "1", v.String())
}

func Test_Store_ShadowingBuiltinKeepsListPosition(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProfile(t, dir, "balanced", `
profile:
  summary: replaced balanced
settings:
  cpu.governor: schedutil
`)

	store := NewStore(dir)
	require.NoError(t, store.Load())

	summaries := store.List()
	assert.Equal(t, "balanced", summaries[0].ID)
	assert.Equal(t, "replaced balanced", summaries[0].Summary)
}

func Test_Store_ProfileDirectoryLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "my-db"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "my-db", "profile.yaml"), []byte(`
profile:
  summary: database host tuning
settings:
  vm.dirty_ratio: 15
`), 0o644))

	store := NewStore(dir)
	require.NoError(t, store.Load())

	def, err := store.Get("my-db")
	require.NoError(t, err)
	assert.Equal(t, "database host tuning", def.Meta.Summary)
}

func Test_Store_MissingDirectoryIsSkipped(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, store.Load())
	assert.Equal(t, 9, store.Len())
}

func Test_Store_MalformedProfileFailsLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProfile(t, dir, "broken", "settings: [not, a, mapping]")

	store := NewStore(dir)
	err := store.Load()
	var invalid *apperrors.InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
}
