// Package state persists the active-profile record so the engine knows,
// across process restarts, which profile is applied and how to revert it.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/systune-dev/systune/internal/apperrors"
	"github.com/systune-dev/systune/internal/apply"
)

// NoneProfile is the sentinel for "no profile active": the implicit baseline
// the system is in before any switch, and after `off`.
const NoneProfile = "none"

// Record is the persisted singleton describing the committed state of the
// engine. Mutated only by the switch controller on a committed switch.
type Record struct {
	// Profile is the active profile id, or NoneProfile.
	Profile string `json:"profile"`

	// Previous is the profile that was active before this switch,
	// NoneProfile when the system was untuned.
	Previous string `json:"previous,omitempty"`

	// ActivatedAt is when the switch committed.
	ActivatedAt time.Time `json:"activated_at"`

	// SwitchID identifies the switch operation that produced this record.
	SwitchID string `json:"switch_id,omitempty"`

	// Snapshot holds the pre-switch values captured by the most recent
	// successful switch, so the system can always revert to its
	// pre-tuned state.
	Snapshot *apply.Snapshot `json:"snapshot,omitempty"`
}

// NoneRecord returns the well-defined initial record used when nothing has
// been persisted yet.
func NoneRecord() *Record {
	return &Record{Profile: NoneProfile}
}

// IsNone reports whether the record describes the untuned baseline.
func (r *Record) IsNone() bool {
	return r.Profile == "" || r.Profile == NoneProfile
}

// NewRecord builds the record for a freshly committed switch.
func NewRecord(profile, previous string, snap *apply.Snapshot) *Record {
	if previous == "" {
		previous = NoneProfile
	}
	return &Record{
		Profile:     profile,
		Previous:    previous,
		ActivatedAt: time.Now().UTC(),
		SwitchID:    uuid.NewString(),
		Snapshot:    snap,
	}
}

// Tracker loads and commits the record at a fixed path. Commit is atomic
// (write-to-temp-then-rename) so a crash mid-write never leaves a
// half-written record, and readers racing a commit see either the old or
// the new record in full.
type Tracker struct {
	mu   sync.Mutex
	path string
}

// NewTracker creates a tracker for the given state file path.
func NewTracker(path string) *Tracker {
	return &Tracker{path: path}
}

// Path returns the state file location.
func (t *Tracker) Path() string {
	return t.path
}

// Load reads the persisted record, returning the none-record when no file
// exists yet.
func (t *Tracker) Load() (*Record, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NoneRecord(), nil
		}
		return nil, apperrors.NewPersistenceError(t.path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperrors.NewPersistenceError(t.path, fmt.Errorf("corrupt record: %w", err))
	}
	if rec.Profile == "" {
		rec.Profile = NoneProfile
	}
	return &rec, nil
}

// Commit persists the record atomically. Any I/O failure is fatal to the
// enclosing switch; the caller must not proceed as if committed.
func (t *Tracker) Commit(rec *Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return apperrors.NewPersistenceError(t.path, err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewPersistenceError(t.path, err)
	}

	tmp, err := os.CreateTemp(dir, ".active-*.json")
	if err != nil {
		return apperrors.NewPersistenceError(t.path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.NewPersistenceError(t.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.NewPersistenceError(t.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewPersistenceError(t.path, err)
	}

	if err := os.Rename(tmpPath, t.path); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewPersistenceError(t.path, err)
	}

	return nil
}
