// Package apply pushes resolved settings onto the live system through the
// backend registry, capturing prior values first so a partial failure can be
// rolled back.
package apply

import (
	"context"
	"log/slog"

	"github.com/systune-dev/systune/internal/apperrors"
	"github.com/systune-dev/systune/internal/backend"
	"github.com/systune-dev/systune/internal/resolve"
)

// Entry is one snapshotted setting: the key and its value before the switch.
type Entry struct {
	Key      string `json:"key"`
	Previous string `json:"previous"`
}

// Snapshot holds the pre-change values for the keys a switch is about to
// write, plus the keys that were skipped because this host does not support
// them. Owned by exactly one in-flight switch: discarded on success
// (persisted with the committed record), replayed on failure.
type Snapshot struct {
	Entries []Entry  `json:"entries"`
	Skipped []string `json:"skipped,omitempty"`
}

// Len returns the number of captured keys.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// IsSkipped reports whether key was excluded as unsupported.
func (s *Snapshot) IsSkipped(key string) bool {
	for _, k := range s.Skipped {
		if k == key {
			return true
		}
	}
	return false
}

// prefix returns a snapshot covering only the first n entries, the portion
// already written when an apply aborts partway.
func (s *Snapshot) prefix(n int) *Snapshot {
	if n > len(s.Entries) {
		n = len(s.Entries)
	}
	return &Snapshot{Entries: s.Entries[:n]}
}

// Applier translates effective settings into live system changes.
type Applier struct {
	registry *backend.Registry
}

// NewApplier creates an applier over the given backend registry.
func NewApplier(registry *backend.Registry) *Applier {
	return &Applier{registry: registry}
}

// Supports reports whether this host can handle key at all.
func (a *Applier) Supports(key string) bool {
	return a.registry.Supports(key)
}

// Read returns the current live value of key, for verification.
func (a *Applier) Read(ctx context.Context, key string) (string, error) {
	return a.registry.Read(ctx, key)
}

// Snapshot reads the current live values for exactly the given keys.
// Keys whose backend reports unsupported on this host are recorded in
// Skipped and excluded from both snapshot and the subsequent apply.
// A genuine read failure aborts; nothing has been written yet.
func (a *Applier) Snapshot(ctx context.Context, keys []string) (*Snapshot, error) {
	snap := &Snapshot{}

	for _, key := range keys {
		if !a.registry.Supports(key) {
			slog.Debug("setting not supported on this host, skipping", "key", key)
			snap.Skipped = append(snap.Skipped, key)
			continue
		}
		value, err := a.registry.Read(ctx, key)
		if err != nil {
			return nil, apperrors.NewApplyError(key, err)
		}
		snap.Entries = append(snap.Entries, Entry{Key: key, Previous: value})
	}

	return snap, nil
}

// Apply writes each supported key's value in order. The batch is
// all-or-nothing: the first write failure triggers restoration of everything
// written so far (including the failing key, whose write may have partially
// landed) and returns ApplyFailed naming the key. Restore failures from that
// rollback are attached as sub-errors.
func (a *Applier) Apply(ctx context.Context, effective *resolve.EffectiveSettings, snap *Snapshot) (int, error) {
	applied := 0

	for _, st := range effective.Settings() {
		if snap.IsSkipped(st.Key) {
			continue
		}
		if err := a.registry.Write(ctx, st.Key, st.Value.String()); err != nil {
			slog.Warn("apply failed, rolling back", "key", st.Key, "error", err)
			applyErr := apperrors.NewApplyError(st.Key, err)
			applyErr.RestoreFailures = a.Restore(ctx, snap.prefix(applied+1))
			return applied, applyErr
		}
		applied++
	}

	return applied, nil
}

// Restore best-effort reverts previously captured values, newest first.
// Individual failures are collected and reported, never fatal mid-restore.
func (a *Applier) Restore(ctx context.Context, snap *Snapshot) []*apperrors.RestoreError {
	var failures []*apperrors.RestoreError

	for i := snap.Len() - 1; i >= 0; i-- {
		entry := snap.Entries[i]
		if err := a.registry.Write(ctx, entry.Key, entry.Previous); err != nil {
			slog.Error("restore failed", "key", entry.Key, "error", err)
			failures = append(failures, apperrors.NewRestoreError(entry.Key, err))
		}
	}

	return failures
}
