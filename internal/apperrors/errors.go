// Package apperrors defines the error taxonomy shared by the profile engine.
// Every failure that crosses a component boundary is one of these types so
// the CLI can map it to a distinct exit code.
package apperrors

import (
	"fmt"
	"strings"
)

// NotFoundError indicates an unknown profile id, either requested directly
// or referenced as an ancestor.
type NotFoundError struct {
	Profile string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("profile not found: %s", e.Profile)
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(profile string) *NotFoundError {
	return &NotFoundError{Profile: profile}
}

// InvalidDefinitionError indicates malformed profile data: a bad setting
// key, an unknown parent reference, a format version mismatch, or a setting
// value rejected by a backend schema.
type InvalidDefinitionError struct {
	Profile string
	Message string
	Details []string
}

func (e *InvalidDefinitionError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("invalid profile %s: %s", e.Profile, e.Message)
	}
	return fmt.Sprintf("invalid profile %s: %s:\n  - %s",
		e.Profile, e.Message, strings.Join(e.Details, "\n  - "))
}

// NewInvalidDefinitionError creates a new invalid-definition error.
func NewInvalidDefinitionError(profile, message string, details ...string) *InvalidDefinitionError {
	return &InvalidDefinitionError{
		Profile: profile,
		Message: message,
		Details: details,
	}
}

// CycleError indicates a cyclic parent chain, detected either during store
// validation or as a defensive re-check during resolution.
type CycleError struct {
	Profile string
	Chain   []string
}

func (e *CycleError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("cyclic inheritance detected at profile %s", e.Profile)
	}
	return fmt.Sprintf("cyclic inheritance detected at profile %s (chain: %s)",
		e.Profile, strings.Join(e.Chain, " -> "))
}

// NewCycleError creates a new cycle error.
func NewCycleError(profile string, chain []string) *CycleError {
	return &CycleError{Profile: profile, Chain: chain}
}

// ApplyError indicates a setting write failed during a switch. The batch is
// all-or-nothing: by the time this error surfaces, the partial snapshot has
// already been restored. Restore failures from that rollback, if any, are
// attached as sub-errors.
type ApplyError struct {
	Key             string
	Cause           error
	RestoreFailures []*RestoreError
}

func (e *ApplyError) Error() string {
	msg := fmt.Sprintf("failed to apply setting %s: %v", e.Key, e.Cause)
	if len(e.RestoreFailures) > 0 {
		msg += fmt.Sprintf(" (rollback incomplete: %d settings not restored)", len(e.RestoreFailures))
	}
	return msg
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}

// NewApplyError creates a new apply error.
func NewApplyError(key string, cause error) *ApplyError {
	return &ApplyError{Key: key, Cause: cause}
}

// RestoreError indicates a single setting could not be reverted to its
// snapshotted value. Restores are best-effort; these accumulate rather than
// abort the rollback.
type RestoreError struct {
	Key   string
	Cause error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("failed to restore setting %s: %v", e.Key, e.Cause)
}

func (e *RestoreError) Unwrap() error {
	return e.Cause
}

// NewRestoreError creates a new restore error.
func NewRestoreError(key string, cause error) *RestoreError {
	return &RestoreError{Key: key, Cause: cause}
}

// PersistenceError indicates the durable active-profile record could not be
// written or read.
type PersistenceError struct {
	Path  string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist active profile record %s: %v", e.Path, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// NewPersistenceError creates a new persistence error.
func NewPersistenceError(path string, cause error) *PersistenceError {
	return &PersistenceError{Path: path, Cause: cause}
}

// InconsistentStateError indicates the live system was tuned successfully but
// the record commit failed afterwards. Live settings are NOT rolled back; the
// persisted record is stale until the profile is re-activated.
type InconsistentStateError struct {
	Profile string
	Cause   *PersistenceError
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("profile %s is applied but could not be recorded; re-activate to repair: %v",
		e.Profile, e.Cause)
}

func (e *InconsistentStateError) Unwrap() error {
	return e.Cause
}

// NewInconsistentStateError creates a new inconsistent-state error.
func NewInconsistentStateError(profile string, cause *PersistenceError) *InconsistentStateError {
	return &InconsistentStateError{Profile: profile, Cause: cause}
}

// BusyError indicates another switch operation holds the engine lock.
type BusyError struct{}

func (e *BusyError) Error() string {
	return "another profile switch is in progress"
}

// NewBusyError creates a new busy error.
func NewBusyError() *BusyError {
	return &BusyError{}
}
