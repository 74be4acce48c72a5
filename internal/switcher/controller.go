// Package switcher orchestrates profile switches: resolve, snapshot, apply,
// commit, with rollback on partial failure. It is the only writer of live
// system state and of the persisted active-profile record.
package switcher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/systune-dev/systune/internal/apperrors"
	"github.com/systune-dev/systune/internal/apply"
	"github.com/systune-dev/systune/internal/config"
	"github.com/systune-dev/systune/internal/resolve"
	"github.com/systune-dev/systune/internal/state"
)

// Phase is the controller's position in the switch state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResolving
	PhaseSnapshotting
	PhaseApplying
	PhaseCommitting
	PhaseRollingBack
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhaseSnapshotting:
		return "snapshotting"
	case PhaseApplying:
		return "applying"
	case PhaseCommitting:
		return "committing"
	case PhaseRollingBack:
		return "rolling-back"
	default:
		return "unknown"
	}
}

// Result summarizes a committed switch.
type Result struct {
	Profile  string   `json:"profile"`
	Applied  int      `json:"applied"`
	Skipped  []string `json:"skipped,omitempty"`
	SwitchID string   `json:"switch_id,omitempty"`
}

// Controller runs the switch state machine. Exactly one switch may be in
// flight at a time; concurrent requests fail with Busy rather than blocking
// or interleaving. Read-only queries never take the switch lock and observe
// either the pre-switch or the fully committed post-switch record, because
// the record only changes at commit.
type Controller struct {
	switchMu sync.Mutex

	store    *config.Store
	resolver *resolve.Resolver
	applier  *apply.Applier
	tracker  *state.Tracker
}

// New creates a controller over the given collaborators.
func New(store *config.Store, applier *apply.Applier, tracker *state.Tracker) *Controller {
	return &Controller{
		store:    store,
		resolver: resolve.NewResolver(store),
		applier:  applier,
		tracker:  tracker,
	}
}

// Active returns the committed active-profile record. Safe to call while a
// switch is in flight.
func (c *Controller) Active() (*state.Record, error) {
	return c.tracker.Load()
}

// Activate switches the system to profile id.
//
// On a write failure during apply, the settings written so far are restored
// and the committed record is untouched. On a commit failure AFTER a
// successful apply, the live settings are NOT rolled back: the system is
// tuned correctly but the record of it is stale. That case surfaces as
// InconsistentState and requires re-activation to repair.
func (c *Controller) Activate(ctx context.Context, id string) (*Result, error) {
	if !c.switchMu.TryLock() {
		return nil, apperrors.NewBusyError()
	}
	defer c.switchMu.Unlock()

	// The committed record tells us what "previous" means for the new one.
	prior, err := c.tracker.Load()
	if err != nil {
		return nil, err
	}

	// Resolving. Failure here returns with no system state touched.
	c.logPhase(PhaseResolving, id)
	effective, err := c.resolver.Resolve(id)
	if err != nil {
		return nil, err
	}

	// A cancellation that arrives before Applying abandons the switch
	// with no side effects. Past this point the switch runs to completion.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Snapshotting: capture prior values for every key about to change.
	c.logPhase(PhaseSnapshotting, id)
	snap, err := c.applier.Snapshot(ctx, effective.Keys())
	if err != nil {
		return nil, err
	}

	// Applying: all-or-nothing batch; the applier restores the partial
	// snapshot itself before surfacing the error.
	c.logPhase(PhaseApplying, id)
	applied, err := c.applier.Apply(ctx, effective, snap)
	if err != nil {
		c.logPhase(PhaseRollingBack, id)
		c.logPhase(PhaseIdle, id)
		return nil, err
	}

	// Committing: make the new record durable.
	c.logPhase(PhaseCommitting, id)
	rec := state.NewRecord(id, prior.Profile, snap)
	if err := c.tracker.Commit(rec); err != nil {
		persistErr, ok := err.(*apperrors.PersistenceError)
		if !ok {
			persistErr = apperrors.NewPersistenceError(c.tracker.Path(), err)
		}
		return nil, apperrors.NewInconsistentStateError(id, persistErr)
	}

	c.logPhase(PhaseIdle, id)
	slog.Info("profile activated", "profile", id, "applied", applied, "skipped", len(snap.Skipped))

	return &Result{
		Profile:  id,
		Applied:  applied,
		Skipped:  snap.Skipped,
		SwitchID: rec.SwitchID,
	}, nil
}

// Deactivate reverts the system to the state before the last committed
// switch by replaying that record's snapshot, then commits the none-record.
// After chained switches this is the previous profile's state, not the
// original untuned baseline. Restore is
// best-effort: individual failures are collected and surfaced after the
// none-record commits, so a second `off` will not replay stale values.
func (c *Controller) Deactivate(ctx context.Context) (*Result, error) {
	if !c.switchMu.TryLock() {
		return nil, apperrors.NewBusyError()
	}
	defer c.switchMu.Unlock()

	rec, err := c.tracker.Load()
	if err != nil {
		return nil, err
	}
	if rec.IsNone() {
		return &Result{Profile: state.NoneProfile}, nil
	}

	c.logPhase(PhaseRollingBack, rec.Profile)
	failures := c.applier.Restore(ctx, rec.Snapshot)

	c.logPhase(PhaseCommitting, state.NoneProfile)
	none := state.NewRecord(state.NoneProfile, rec.Profile, nil)
	if err := c.tracker.Commit(none); err != nil {
		persistErr, ok := err.(*apperrors.PersistenceError)
		if !ok {
			persistErr = apperrors.NewPersistenceError(c.tracker.Path(), err)
		}
		return nil, apperrors.NewInconsistentStateError(state.NoneProfile, persistErr)
	}

	c.logPhase(PhaseIdle, state.NoneProfile)
	slog.Info("profile deactivated", "was", rec.Profile, "restored", rec.Snapshot.Len()-len(failures))

	if len(failures) > 0 {
		errs := make([]error, len(failures))
		for i, f := range failures {
			errs[i] = f
		}
		return nil, joinRestoreErrors(errs)
	}

	return &Result{
		Profile:  state.NoneProfile,
		Applied:  rec.Snapshot.Len(),
		SwitchID: none.SwitchID,
	}, nil
}

// logPhase records a state machine transition at debug level.
func (c *Controller) logPhase(p Phase, profile string) {
	slog.Debug("switch phase", "phase", p.String(), "profile", profile)
}
