package guard

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/warden/internal/hook"
)

// SessionStartContext builds the resume briefing injected when a
// session starts: the most recent active workflow, any others, and
// orphaned documents missing their state sidecar. It returns "" when
// there is nothing to report. As a side effect it records a session
// marker and binds the session to the primary workflow so later
// enforcement points can resolve it.
func (e *Env) SessionStartContext(in hook.Input) string {
	log := e.Logger.WithHook("session-start")

	active := e.Store.ListActive()
	orphans := e.Store.FindOrphans()
	if len(active) == 0 && len(orphans) == 0 {
		return ""
	}

	var parts []string

	if len(active) > 0 {
		primary := active[0]
		state := primary.Record

		pending := state.PendingGates()
		names := make([]string, 0, len(pending))
		for _, g := range pending {
			names = append(names, g.Name)
		}
		pendingStr := "none"
		if len(names) > 0 {
			pendingStr = strings.Join(names, ", ")
		}

		wfType := state.Workflow.Type
		if wfType == "" {
			wfType = "unknown"
		}
		mode := state.Mode.Current
		if mode == "" {
			mode = "unknown"
		}
		phase := "unknown"
		if state.Phase != nil && state.Phase.Current != "" {
			phase = state.Phase.Current
		}

		parts = append(parts,
			"## Active Workflow Detected",
			"",
			"You are resuming an active workflow. Read the org file and continue from the current phase.",
			"",
			fmt.Sprintf("- **Workflow ID:** %s", state.WorkflowID),
			fmt.Sprintf("- **Type:** %s", wfType),
			fmt.Sprintf("- **Mode:** %s", mode),
			fmt.Sprintf("- **Current Phase:** %s", phase),
			fmt.Sprintf("- **Pending Gates:** %s", pendingStr),
			fmt.Sprintf("- **Org File:** %s", state.OrgFile),
			fmt.Sprintf("- **State File:** %s", primary.Path),
		)
		if state.Workflow.Description != "" {
			parts = append(parts, fmt.Sprintf("- **Description:** %s", state.Workflow.Description))
		}

		if len(active) > 1 {
			parts = append(parts, "", "### Other Active Workflows")
			for _, other := range active[1:] {
				otherType := other.Record.Workflow.Type
				if otherType == "" {
					otherType = "?"
				}
				otherPhase := "?"
				if other.Record.Phase != nil && other.Record.Phase.Current != "" {
					otherPhase = other.Record.Phase.Current
				}
				parts = append(parts, fmt.Sprintf("- %s (%s, phase: %s)",
					other.Record.WorkflowID, otherType, otherPhase))
			}
		}

		e.Bindings.WriteMarker(in.SessionID)
		e.Bindings.Bind(in.SessionID, primary.Path, state.WorkflowID)
		log.Info("resuming workflow", "workflow_id", state.WorkflowID, "phase", phase)
	}

	if len(orphans) > 0 {
		parts = append(parts,
			"",
			"### Orphaned Workflow Files",
			"",
			"These org files have no corresponding .state.json sidecar. They may need recreation:",
		)
		for _, path := range orphans {
			parts = append(parts, fmt.Sprintf("- %s", path))
		}
		log.Info("found orphaned workflow files", "count", len(orphans))
	}

	return strings.Join(parts, "\n")
}
