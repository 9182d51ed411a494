package guard

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/warden/internal/counter"
	"github.com/Iron-Ham/warden/internal/hook"
	"github.com/Iron-Ham/warden/internal/sessionbind"
)

// completionKeywords flag a completed task as workflow-relevant. The
// match is a plain substring predicate over subject plus description so
// it can be swapped for a structured signal later.
var completionKeywords = []string{
	"workflow", "complete", "final", "finish", "done", "wrap up",
}

// CheckCompletion guards task-completion events. A workflow-relevant
// task may not complete while mandatory gates are outstanding, subject
// to a per-(session, task) escape valve. A denial here is a hard stop:
// the caller signals it with a non-zero exit status, not an advisory
// decision object.
func (e *Env) CheckCompletion(in hook.Input) Decision {
	log := e.Logger.WithHook("task-completed")

	resolved := e.Bindings.Resolve(in.SessionID)
	if resolved == nil {
		return allow
	}
	state := resolved.Record

	if !isWorkflowRelevant(in.EffectiveSubject(), in.EffectiveDescription()) {
		return allow
	}

	if state.AllMandatoryGatesPassed() {
		log.Info("all gates passed, allowing completion", "workflow_id", state.WorkflowID)
		return allow
	}

	taskID := in.TaskID
	if taskID == "" || !sessionbind.ValidSessionID(taskID) {
		taskID = "unknown-task"
	}
	counterFile := e.Bindings.CompletionCounterFile(in.SessionID, taskID)

	blocks := counter.Value(counterFile)
	if blocks >= e.Thresholds.CompletionLimit {
		log.Warn("safety override: allowing completion after repeated blocks",
			"workflow_id", state.WorkflowID, "blocks", blocks)
		counter.Reset(counterFile)
		return allow
	}
	blocks = counter.Increment(counterFile)

	pending := state.PendingGates()
	names := make([]string, 0, len(pending))
	for _, g := range pending {
		names = append(names, g.Name)
	}

	reason := fmt.Sprintf(
		"Cannot complete workflow %q. Unfinished mandatory gates: %s. (Block %d/%d)",
		state.WorkflowID, strings.Join(names, ", "), blocks, e.Thresholds.CompletionLimit,
	)
	log.Info("blocking completion",
		"workflow_id", state.WorkflowID, "pending", strings.Join(names, ","),
		"blocks", blocks, "limit", e.Thresholds.CompletionLimit)
	return deny(reason)
}

func isWorkflowRelevant(subject, description string) bool {
	combined := strings.ToLower(subject + " " + description)
	for _, kw := range completionKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}
