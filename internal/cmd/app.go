package cmd

import (
	"github.com/Iron-Ham/warden/internal/config"
	"github.com/Iron-Ham/warden/internal/guard"
	"github.com/Iron-Ham/warden/internal/logging"
	"github.com/Iron-Ham/warden/internal/sessionbind"
	"github.com/Iron-Ham/warden/internal/statestore"
)

// app bundles the wired runtime every command works against.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	store    *statestore.Store
	bindings *sessionbind.Registry
	guard    *guard.Env
}

// newApp wires the runtime from configuration. It never fails: a
// broken config degrades to defaults and a broken log path degrades to
// a no-op logger, because a hook that cannot initialize must still
// fail open.
func newApp() *app {
	cfg := config.Get()

	log := logging.Open(cfg.Logging.File, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})

	store := statestore.New(cfg.Paths.WorkflowsDir(), cfg.Paths.ScratchDir, log)
	bindings := sessionbind.NewRegistry(cfg.Paths.ScratchDir, store, log)

	env := guard.NewEnv(store, bindings, guard.Thresholds{
		StopBlockLimit:  cfg.Thresholds.StopBlockLimit,
		StaleLimit:      cfg.Thresholds.StaleLimit,
		DenyLimit:       cfg.Thresholds.DenyLimit,
		CompletionLimit: cfg.Thresholds.CompletionLimit,
	}, log)

	return &app{cfg: cfg, log: log, store: store, bindings: bindings, guard: env}
}

func (a *app) close() {
	_ = a.log.Close()
}
