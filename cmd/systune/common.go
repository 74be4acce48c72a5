package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/systune-dev/systune/internal/apperrors"
	"github.com/systune-dev/systune/internal/apply"
	"github.com/systune-dev/systune/internal/backend"
	"github.com/systune-dev/systune/internal/config"
	"github.com/systune-dev/systune/internal/state"
	"github.com/systune-dev/systune/internal/switcher"
)

// Exit codes distinguish error classes for scripting.
const (
	exitOK                = 0
	exitGeneric           = 1
	exitNotFound          = 2
	exitInvalidDefinition = 3
	exitBusy              = 4
	exitApplyFailed       = 5
	exitPersistence       = 6
)

// engine bundles the wired-up core components for one command invocation.
type engine struct {
	cfg        *config.SystemConfig
	store      *config.Store
	registry   *backend.Registry
	tracker    *state.Tracker
	controller *switcher.Controller
}

// loadSystemConfig merges defaults, config file, and environment.
func loadSystemConfig() (*config.SystemConfig, error) {
	cfg := config.DefaultSystemConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}

// trackerFor returns the state tracker without loading any profiles.
func trackerFor(cfg *config.SystemConfig) *state.Tracker {
	return state.NewTracker(cfg.StateFile)
}

// buildEngine loads profiles and wires the core components.
func buildEngine() (*engine, error) {
	cfg, err := loadSystemConfig()
	if err != nil {
		return nil, err
	}

	store := config.NewStore(cfg.ProfileDirs...)
	if err := store.Load(); err != nil {
		return nil, err
	}

	registry := backend.DefaultRegistry(cfg.SysfsRoot)
	tracker := state.NewTracker(cfg.StateFile)
	applier := apply.NewApplier(registry)

	return &engine{
		cfg:        cfg,
		store:      store,
		registry:   registry,
		tracker:    tracker,
		controller: switcher.New(store, applier, tracker),
	}, nil
}

// exitCodeFor maps core errors to distinct process exit codes.
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}

	var (
		notFound     *apperrors.NotFoundError
		invalid      *apperrors.InvalidDefinitionError
		cycle        *apperrors.CycleError
		busy         *apperrors.BusyError
		applyFailed  *apperrors.ApplyError
		persistence  *apperrors.PersistenceError
		inconsistent *apperrors.InconsistentStateError
	)

	switch {
	case errors.As(err, &notFound):
		return exitNotFound
	case errors.As(err, &invalid), errors.As(err, &cycle):
		return exitInvalidDefinition
	case errors.As(err, &busy):
		return exitBusy
	case errors.As(err, &applyFailed):
		return exitApplyFailed
	case errors.As(err, &inconsistent), errors.As(err, &persistence):
		return exitPersistence
	default:
		return exitGeneric
	}
}
