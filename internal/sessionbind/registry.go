// Package sessionbind maps Claude Code session ids to workflow state
// records. A binding is the only way a session-scoped hook may observe
// a workflow: an unbound session resolves to nothing, never to "the
// most recently active workflow". That no-fallback rule is the session
// isolation guarantee.
//
// All operations are best-effort and total, matching the fail-open
// posture of the hooks that call them.
package sessionbind

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/warden/internal/logging"
	"github.com/Iron-Ham/warden/internal/statestore"
	"github.com/Iron-Ham/warden/internal/workflow"
)

// Binding is the persisted session-to-workflow association.
type Binding struct {
	SessionID    string `json:"session_id"`
	WorkflowPath string `json:"workflow_path"`
	WorkflowID   string `json:"workflow_id"`
	BoundAt      string `json:"bound_at"`
}

// Marker is the ephemeral discovery record other subsystems use to find
// the current session id. It plays no part in enforcement.
type Marker struct {
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// Resolved is a successfully resolved session workflow.
type Resolved struct {
	Path   string
	Record *workflow.Record
}

// Registry manages bindings, markers, and the session's ephemeral
// scratch files.
type Registry struct {
	scratchDir string
	store      *statestore.Store
	logger     *logging.Logger
}

// NewRegistry creates a Registry over the given scratch directory,
// resolving workflow records through store.
func NewRegistry(scratchDir string, store *statestore.Store, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Registry{scratchDir: scratchDir, store: store, logger: logger}
}

// Bind associates a session with a workflow state record. Returns false
// on an invalid session id or a write failure.
func (r *Registry) Bind(sessionID, workflowPath, workflowID string) bool {
	if !ValidSessionID(sessionID) {
		return false
	}
	b := Binding{
		SessionID:    sessionID,
		WorkflowPath: workflowPath,
		WorkflowID:   workflowID,
		BoundAt:      time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return false
	}
	if err := os.WriteFile(r.BindingFile(sessionID), append(data, '\n'), 0644); err != nil {
		r.logger.Warn("binding write failed", "session_id", sessionID, "error", err.Error())
		return false
	}
	return true
}

// Resolve returns the workflow bound to the session, or nil when the
// session id is invalid, no binding exists, or the bound record is
// unreadable. There is deliberately no fallback: an unbound session
// must never observe any workflow.
func (r *Registry) Resolve(sessionID string) *Resolved {
	if !ValidSessionID(sessionID) {
		return nil
	}

	data, err := os.ReadFile(r.BindingFile(sessionID))
	if err != nil {
		return nil
	}
	var b Binding
	if err := json.Unmarshal(data, &b); err != nil {
		r.logger.Warn("unparseable binding", "session_id", sessionID, "error", err.Error())
		return nil
	}

	rec := r.store.Read(b.WorkflowPath)
	if rec == nil {
		return nil
	}
	return &Resolved{Path: b.WorkflowPath, Record: rec}
}

// Clear removes the session's binding record, best-effort.
func (r *Registry) Clear(sessionID string) {
	if !ValidSessionID(sessionID) {
		return
	}
	_ = os.Remove(r.BindingFile(sessionID))
}

// WriteMarker writes the session discovery marker, best-effort and
// independent of binding state.
func (r *Registry) WriteMarker(sessionID string) {
	if !ValidSessionID(sessionID) {
		return
	}
	m := Marker{
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := os.WriteFile(r.MarkerFile(sessionID), append(data, '\n'), 0644); err != nil {
		r.logger.Warn("marker write failed", "session_id", sessionID, "error", err.Error())
	}
}

// CleanupSessionFiles removes every ephemeral file belonging to one
// session: marker, binding, stop counters, staleness snapshot, deny
// counter, and all per-task completion counters. Returns the number of
// files removed.
func (r *Registry) CleanupSessionFiles(sessionID string) int {
	if !ValidSessionID(sessionID) {
		return 0
	}

	removed := 0
	for _, path := range []string{
		r.MarkerFile(sessionID),
		r.BindingFile(sessionID),
		r.StopCounterFile(sessionID),
		r.StaleSnapshotFile(sessionID),
		r.DenyCounterFile(sessionID),
	} {
		if os.Remove(path) == nil {
			removed++
		}
	}

	// Completion counters carry a task id suffix; match them by glob.
	pattern := filepath.Join(r.scratchDir, fmt.Sprintf(completionPattern, sessionID, "*"))
	matches, err := filepath.Glob(pattern)
	if err == nil {
		for _, m := range matches {
			if os.Remove(m) == nil {
				removed++
			}
		}
	}
	return removed
}

// CleanupStale removes marker and binding files whose last-modified age
// exceeds maxAge. Counter files are included so abandoned sessions do
// not accrete scratch state forever. Returns the number removed; a
// second call over the same files removes nothing.
func (r *Registry) CleanupStale(maxAge time.Duration) int {
	patterns := []string{
		"workflow-session-*.json",
		"workflow-binding-*.json",
		"workflow-stop-*.count",
		"workflow-stop-*.stale",
		"workflow-deny-*.json",
		"workflow-complete-*.count",
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(r.scratchDir, p))
		if err != nil {
			continue
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				if os.Remove(path) == nil {
					removed++
				}
			}
		}
	}
	if removed > 0 {
		r.logger.Info("stale session files removed", "count", removed)
	}
	return removed
}
