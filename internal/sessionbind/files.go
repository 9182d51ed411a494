package sessionbind

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Scratch file naming patterns. Every ephemeral record a session leaves
// behind embeds the session id so concurrent sessions never collide,
// and so session-end cleanup can find everything by glob.
const (
	markerPattern     = "workflow-session-%s.json"
	bindingPattern    = "workflow-binding-%s.json"
	stopCountPattern  = "workflow-stop-%s.count"
	staleSnapPattern  = "workflow-stop-%s.stale"
	denyCountPattern  = "workflow-deny-%s.json"
	completionPattern = "workflow-complete-%s-%s.count"
)

// sessionIDRe bounds session (and task) ids to filename-safe tokens.
// Anything else could smuggle path separators into scratch file names.
var sessionIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidSessionID reports whether id is usable: non-empty, not the
// "unknown" sentinel, and filename-safe.
func ValidSessionID(id string) bool {
	if id == "" || id == "unknown" {
		return false
	}
	return sessionIDRe.MatchString(id)
}

// MarkerFile returns the discovery marker path for a session.
func (r *Registry) MarkerFile(sessionID string) string {
	return filepath.Join(r.scratchDir, fmt.Sprintf(markerPattern, sessionID))
}

// BindingFile returns the session-to-workflow binding path.
func (r *Registry) BindingFile(sessionID string) string {
	return filepath.Join(r.scratchDir, fmt.Sprintf(bindingPattern, sessionID))
}

// StopCounterFile returns the consecutive stop-block counter path.
func (r *Registry) StopCounterFile(sessionID string) string {
	return filepath.Join(r.scratchDir, fmt.Sprintf(stopCountPattern, sessionID))
}

// StaleSnapshotFile returns the staleness snapshot path.
func (r *Registry) StaleSnapshotFile(sessionID string) string {
	return filepath.Join(r.scratchDir, fmt.Sprintf(staleSnapPattern, sessionID))
}

// DenyCounterFile returns the per-session mode/model deny counter path.
func (r *Registry) DenyCounterFile(sessionID string) string {
	return filepath.Join(r.scratchDir, fmt.Sprintf(denyCountPattern, sessionID))
}

// CompletionCounterFile returns the per-task completion-block counter path.
func (r *Registry) CompletionCounterFile(sessionID, taskID string) string {
	return filepath.Join(r.scratchDir, fmt.Sprintf(completionPattern, sessionID, taskID))
}
