// Package guard implements the enforcement points that run on lifecycle
// events: the stop guard, gate tracker, mode router, and completion
// gate. Each consumes one decoded event, consults the state store and
// session bindings, and produces at most one decision.
//
// The shared posture is fail-open: any unexpected condition degrades to
// an allow. Blocking is only ever the result of an affirmatively
// resolved workflow with affirmatively incomplete gates, and even then
// the safety valves guarantee a session can always move forward.
package guard

import (
	"github.com/Iron-Ham/warden/internal/logging"
	"github.com/Iron-Ham/warden/internal/sessionbind"
	"github.com/Iron-Ham/warden/internal/statestore"
)

// Thresholds are the safety-valve ceilings. Counters are advisory, so
// these bound the worst case rather than define exact behavior under
// races.
type Thresholds struct {
	// StopBlockLimit is the number of consecutive stop blocks allowed
	// before the valve trips and the stop is permitted.
	StopBlockLimit int
	// StaleLimit is the number of consecutive block attempts that may
	// observe an unchanged workflow timestamp before the stop is
	// permitted.
	StaleLimit int
	// DenyLimit is the number of times a (mode, model) combination is
	// denied before the override allows it through.
	DenyLimit int
	// CompletionLimit is the number of times one task's completion may
	// be blocked before it is allowed through.
	CompletionLimit int
}

// DefaultThresholds returns the standard ceilings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StopBlockLimit:  5,
		StaleLimit:      3,
		DenyLimit:       3,
		CompletionLimit: 3,
	}
}

// Decision is the outcome of an enforcement check. An allow carries no
// reason; a block's reason is shown to the agent.
type Decision struct {
	Allow  bool
	Reason string
}

var allow = Decision{Allow: true}

func deny(reason string) Decision {
	return Decision{Allow: false, Reason: reason}
}

// Env bundles the collaborators every enforcement point needs.
type Env struct {
	Store      *statestore.Store
	Bindings   *sessionbind.Registry
	Thresholds Thresholds
	Logger     *logging.Logger
}

// NewEnv wires an enforcement environment, substituting a no-op logger
// when none is given.
func NewEnv(store *statestore.Store, bindings *sessionbind.Registry, t Thresholds, logger *logging.Logger) *Env {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Env{Store: store, Bindings: bindings, Thresholds: t, Logger: logger}
}
