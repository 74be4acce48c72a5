package apply

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systune-dev/systune/internal/apperrors"
	"github.com/systune-dev/systune/internal/backend"
	"github.com/systune-dev/systune/internal/backend/backendtest"
	"github.com/systune-dev/systune/internal/config"
	"github.com/systune-dev/systune/internal/resolve"
)

// singleProfileSource resolves one flat profile for applier tests.
type singleProfileSource struct {
	def *config.Definition
}

func (s *singleProfileSource) Get(id string) (*config.Definition, error) {
	if id != s.def.ID {
		return nil, apperrors.NewNotFoundError(id)
	}
	return s.def, nil
}

func (s *singleProfileSource) Len() int { return 1 }

func resolveProfile(t *testing.T, doc string) *resolve.EffectiveSettings {
	t.Helper()
	def, err := config.LoadDefinitionFromReader(strings.NewReader(doc), "test-profile")
	require.NoError(t, err)
	effective, err := resolve.NewResolver(&singleProfileSource{def: def}).Resolve("test-profile")
	require.NoError(t, err)
	return effective
}

func Test_Applier_SnapshotCapturesCurrentValues(t *testing.T) {
	t.Parallel()

	cpu := backendtest.NewFake("cpu").Seed("cpu.governor", "ondemand")
	disk := backendtest.NewFake("disk").Seed("disk.readahead", "128")
	registry := backend.NewRegistry()
	registry.Register(cpu)
	registry.Register(disk)

	snap, err := NewApplier(registry).Snapshot(context.Background(), []string{"cpu.governor", "disk.readahead"})
	require.NoError(t, err)

	require.Equal(t, 2, snap.Len())
	assert.Equal(t, Entry{Key: "cpu.governor", Previous: "ondemand"}, snap.Entries[0])
	assert.Equal(t, Entry{Key: "disk.readahead", Previous: "128"}, snap.Entries[1])
	assert.Empty(t, snap.Skipped)
}

func Test_Applier_UnsupportedKeysExcludedFromSnapshotAndApply(t *testing.T) {
	t.Parallel()

	cpu := backendtest.NewFake("cpu").Seed("cpu.governor", "ondemand")
	disk := backendtest.NewFake("disk").MarkUnsupported("disk.readahead")
	registry := backend.NewRegistry()
	registry.Register(cpu)
	registry.Register(disk)

	applier := NewApplier(registry)
	effective := resolveProfile(t, `
profile:
  summary: network throughput
settings:
  cpu.governor: performance
  disk.readahead: 4096
`)

	snap, err := applier.Snapshot(context.Background(), effective.Keys())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, []string{"disk.readahead"}, snap.Skipped)

	applied, err := applier.Apply(context.Background(), effective, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, "performance", cpu.Value("cpu.governor"))
	// The unsupported key was never written.
	assert.Empty(t, disk.WriteOrder())
}

func Test_Applier_KeyWithoutBackendIsSkippedNotFatal(t *testing.T) {
	t.Parallel()

	registry := backend.NewRegistry()
	registry.Register(backendtest.NewFake("cpu").Seed("cpu.governor", "ondemand"))

	snap, err := NewApplier(registry).Snapshot(context.Background(), []string{"cpu.governor", "exotic.knob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"exotic.knob"}, snap.Skipped)
}

func Test_Applier_ApplyWritesInResolvedOrder(t *testing.T) {
	t.Parallel()

	fake := backendtest.NewFake("vm").
		Seed("vm.dirty_ratio", "20").
		Seed("vm.swappiness", "60")
	registry := backend.NewRegistry()
	registry.Register(fake)

	applier := NewApplier(registry)
	effective := resolveProfile(t, `
profile:
  summary: ordered apply
settings:
  vm.dirty_ratio: 40
  vm.swappiness: 10
`)

	snap, err := applier.Snapshot(context.Background(), effective.Keys())
	require.NoError(t, err)

	applied, err := applier.Apply(context.Background(), effective, snap)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, []string{"vm.dirty_ratio", "vm.swappiness"}, fake.WriteOrder())
}

func Test_Applier_PartialFailureRestoresWrittenKeys(t *testing.T) {
	t.Parallel()

	fake := backendtest.NewFake("tune").
		Seed("tune.readahead", "128").
		Seed("tune.governor", "ondemand").
		FailWrite("tune.governor", errors.New("permission denied"))
	registry := backend.NewRegistry()
	registry.Register(fake)

	applier := NewApplier(registry)
	effective := resolveProfile(t, `
profile:
  summary: powersave
settings:
  tune.readahead: 4096
  tune.governor: powersave
`)

	snap, err := applier.Snapshot(context.Background(), effective.Keys())
	require.NoError(t, err)

	applied, err := applier.Apply(context.Background(), effective, snap)
	assert.Equal(t, 1, applied)

	var applyErr *apperrors.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, "tune.governor", applyErr.Key)
	assert.Empty(t, applyErr.RestoreFailures)

	// readahead was written, then restored to its pre-switch value.
	assert.Equal(t, "128", fake.Value("tune.readahead"))
	assert.Equal(t, "ondemand", fake.Value("tune.governor"))
}

func Test_Applier_RollbackFailuresAttachedAsSubErrors(t *testing.T) {
	t.Parallel()

	fake := backendtest.NewFake("tune").
		Seed("tune.a", "1").
		Seed("tune.b", "2")
	registry := backend.NewRegistry()
	registry.Register(fake)

	applier := NewApplier(registry)
	effective := resolveProfile(t, `
profile:
  summary: doomed
settings:
  tune.a: 10
  tune.b: 20
`)

	snap, err := applier.Snapshot(context.Background(), effective.Keys())
	require.NoError(t, err)

	// The device wedges before the apply: the first write fails, and so
	// does the rollback attempt for that same key.
	fake.FailWrite("tune.a", errors.New("device wedged"))

	_, err = applier.Apply(context.Background(), effective, snap)
	var applyErr *apperrors.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, "tune.a", applyErr.Key)
	require.Len(t, applyErr.RestoreFailures, 1)
	assert.Equal(t, "tune.a", applyErr.RestoreFailures[0].Key)
}

func Test_Applier_RestoreRevertsNewestFirst(t *testing.T) {
	t.Parallel()

	fake := backendtest.NewFake("vm").
		Seed("vm.swappiness", "10").
		Seed("vm.dirty_ratio", "40")
	registry := backend.NewRegistry()
	registry.Register(fake)

	applier := NewApplier(registry)
	snap := &Snapshot{Entries: []Entry{
		{Key: "vm.swappiness", Previous: "60"},
		{Key: "vm.dirty_ratio", Previous: "20"},
	}}

	failures := applier.Restore(context.Background(), snap)
	assert.Empty(t, failures)
	assert.Equal(t, "60", fake.Value("vm.swappiness"))
	assert.Equal(t, "20", fake.Value("vm.dirty_ratio"))
	assert.Equal(t, []string{"vm.dirty_ratio", "vm.swappiness"}, fake.WriteOrder())
}

func Test_Applier_RestoreCollectsAllFailures(t *testing.T) {
	t.Parallel()

	fake := backendtest.NewFake("vm").
		Seed("vm.swappiness", "10").
		Seed("vm.dirty_ratio", "40").
		FailWrite("vm.swappiness", errors.New("io error")).
		FailWrite("vm.dirty_ratio", errors.New("io error"))
	registry := backend.NewRegistry()
	registry.Register(fake)

	snap := &Snapshot{Entries: []Entry{
		{Key: "vm.swappiness", Previous: "60"},
		{Key: "vm.dirty_ratio", Previous: "20"},
	}}

	failures := NewApplier(registry).Restore(context.Background(), snap)
	require.Len(t, failures, 2)
	assert.Equal(t, "vm.dirty_ratio", failures[0].Key)
	assert.Equal(t, "vm.swappiness", failures[1].Key)
}
