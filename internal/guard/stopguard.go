package guard

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/warden/internal/counter"
	"github.com/Iron-Ham/warden/internal/hook"
	"github.com/Iron-Ham/warden/internal/workflow"
)

// CheckStop is the termination-time enforcement point. It blocks a stop
// while the session's workflow has incomplete mandatory gates, subject
// to a strictly ordered 3-layer loop-prevention protocol:
//
//  1. Circuit breaker: a re-entrant stop-hook invocation allows
//     immediately.
//  2. Consecutive-block valve: once the per-session block counter
//     reaches the ceiling, allow unconditionally and reset.
//  3. Staleness valve: if the workflow's updated_at is identical across
//     enough consecutive block attempts, the workflow is wedged; allow
//     and clear both counters.
func (e *Env) CheckStop(in hook.Input) Decision {
	log := e.Logger.WithHook("stop-guard")

	// Layer 1: never re-enter our own enforcement.
	if in.StopHookActive {
		log.Debug("circuit breaker active, allowing stop")
		return allow
	}

	resolved := e.Bindings.Resolve(in.SessionID)
	if resolved == nil {
		// No bound workflow: invisible, allow.
		return allow
	}
	state := resolved.Record

	counterFile := e.Bindings.StopCounterFile(in.SessionID)
	staleFile := e.Bindings.StaleSnapshotFile(in.SessionID)

	if state.AllMandatoryGatesPassed() {
		log.Info("all gates passed, allowing stop", "workflow_id", state.WorkflowID)
		counter.Reset(counterFile)
		counter.ClearSnapshot(staleFile)
		return allow
	}

	// Layer 2: consecutive-block ceiling.
	blocks := counter.Value(counterFile)
	if blocks >= e.Thresholds.StopBlockLimit {
		log.Warn("safety valve: consecutive block ceiling reached, allowing stop",
			"workflow_id", state.WorkflowID, "blocks", blocks)
		counter.Reset(counterFile)
		return allow
	}

	// Layer 3: staleness detection. Count consecutive attempts that
	// observed the same updated_at, this one included.
	snap := counter.ReadSnapshot(staleFile)
	seen := 1
	if snap.UpdatedAt == state.UpdatedAt {
		seen = snap.Count + 1
	}
	if seen >= e.Thresholds.StaleLimit {
		log.Warn("safety valve: workflow stale, allowing stop",
			"workflow_id", state.WorkflowID, "unchanged_attempts", seen)
		counter.ClearSnapshot(staleFile)
		counter.Reset(counterFile)
		return allow
	}

	blocks = counter.Increment(counterFile)
	counter.WriteSnapshot(staleFile, counter.Snapshot{UpdatedAt: state.UpdatedAt, Count: seen})

	reason := e.stopBlockReason(state, blocks)
	log.Info("blocking stop",
		"workflow_id", state.WorkflowID, "blocks", blocks, "limit", e.Thresholds.StopBlockLimit)
	return deny(reason)
}

func (e *Env) stopBlockReason(state *workflow.Record, blocks int) string {
	pending := state.PendingGates()
	names := make([]string, 0, len(pending))
	for _, g := range pending {
		names = append(names, g.Name)
	}

	nextAction := "Check workflow state for next steps."
	if next := state.NextPhase(); next != "" {
		nextAction = fmt.Sprintf("Next action: advance to %s phase.", next)
	}

	return fmt.Sprintf(
		"Cannot stop. Active workflow %q has incomplete mandatory gates. Missing: %s. %s (Block %d/%d — safety valve at %d)",
		state.WorkflowID, strings.Join(names, ", "), nextAction,
		blocks, e.Thresholds.StopBlockLimit, e.Thresholds.StopBlockLimit,
	)
}
