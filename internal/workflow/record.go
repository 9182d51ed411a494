// Package workflow defines the persisted workflow state record and the
// queries the enforcement hooks run against it. A record tracks which
// review gates a unit of work has passed and which phase the work is in.
// Records are plain JSON files; all persistence lives in statestore.
package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// GateStatus is the lifecycle state of a single gate.
type GateStatus string

const (
	GatePending    GateStatus = "pending"
	GateInProgress GateStatus = "in_progress"
	GatePassed     GateStatus = "passed"
	GateFailed     GateStatus = "failed"
	GateSkipped    GateStatus = "skipped"
)

// PhaseCompleted is the sentinel phase value used once no phases remain.
const PhaseCompleted = "completed"

// Gate tracks the status and iteration count of one named checkpoint.
type Gate struct {
	Status    GateStatus `json:"status"`
	Iteration int        `json:"iteration"`
}

// Phase tracks progression through the ordered gate sequence.
// Current must equal the head of Remaining, or PhaseCompleted when
// Remaining is empty.
type Phase struct {
	Current   string   `json:"current"`
	Remaining []string `json:"remaining"`
	Completed []string `json:"completed"`
}

// Mode holds the operating mode the workflow runs under.
type Mode struct {
	Current string `json:"current"`
}

// Meta is descriptive metadata, opaque to the enforcement logic.
type Meta struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// LogEntry is one append-only audit entry recording an agent completion.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	AgentType string `json:"agent_type"`
	Gate      string `json:"gate"`
	Verdict   string `json:"verdict"`
	Iteration int    `json:"iteration"`
	AgentID   string `json:"agent_id,omitempty"`
}

// Record is the full persisted state of one workflow.
//
// UpdatedAt is kept as the raw string form so that a record with a
// mangled timestamp still parses; it is a logical freshness marker,
// never a lock.
type Record struct {
	WorkflowID string           `json:"workflow_id"`
	Workflow   Meta             `json:"workflow"`
	Mode       Mode             `json:"mode"`
	Phase      *Phase           `json:"phase,omitempty"`
	Gates      map[string]*Gate `json:"gates,omitempty"`
	AgentLog   []LogEntry       `json:"agent_log,omitempty"`
	OrgFile    string           `json:"org_file,omitempty"`
	CreatedAt  string           `json:"created_at,omitempty"`
	UpdatedAt  string           `json:"updated_at,omitempty"`
}

// PendingGate pairs a gate with its name for reporting.
type PendingGate struct {
	Name string
	Gate Gate
}

// AllMandatoryGatesPassed reports whether every gate that is not skipped
// has passed. A record with no gates defined is not complete: absence of
// gates means the workflow was never populated, not that it finished.
func (r *Record) AllMandatoryGatesPassed() bool {
	if r == nil || len(r.Gates) == 0 {
		return false
	}
	for _, g := range r.Gates {
		if g == nil {
			return false
		}
		if g.Status == GateSkipped {
			continue
		}
		if g.Status != GatePassed {
			return false
		}
	}
	return true
}

// PendingGates returns the gates that are neither passed nor skipped,
// in sorted name order so messages are stable across invocations.
func (r *Record) PendingGates() []PendingGate {
	if r == nil || len(r.Gates) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Gates))
	for name, g := range r.Gates {
		if g == nil {
			continue
		}
		if g.Status == GatePassed || g.Status == GateSkipped {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	pending := make([]PendingGate, 0, len(names))
	for _, name := range names {
		pending = append(pending, PendingGate{Name: name, Gate: *r.Gates[name]})
	}
	return pending
}

// NextPhase returns the head of the remaining phase sequence, or ""
// when nothing remains.
func (r *Record) NextPhase() string {
	if r == nil || r.Phase == nil || len(r.Phase.Remaining) == 0 {
		return ""
	}
	return r.Phase.Remaining[0]
}

// EnsureGate returns the gate with the given name, creating a pending
// entry if it does not exist yet.
func (r *Record) EnsureGate(name string) *Gate {
	if r.Gates == nil {
		r.Gates = make(map[string]*Gate)
	}
	g, ok := r.Gates[name]
	if !ok || g == nil {
		g = &Gate{Status: GatePending}
		r.Gates[name] = g
	}
	return g
}

// AdvancePast moves the named gate from Remaining to Completed,
// idempotently, and points Current at the new head of Remaining (or the
// PhaseCompleted sentinel when none remain).
func (r *Record) AdvancePast(gateName string) {
	if r.Phase == nil {
		return
	}
	if !containsString(r.Phase.Completed, gateName) {
		r.Phase.Completed = append(r.Phase.Completed, gateName)
	}
	r.Phase.Remaining = removeString(r.Phase.Remaining, gateName)
	if len(r.Phase.Remaining) > 0 {
		r.Phase.Current = r.Phase.Remaining[0]
	} else {
		r.Phase.Current = PhaseCompleted
	}
}

// AppendLog appends an audit entry for one agent completion.
func (r *Record) AppendLog(entry LogEntry) {
	r.AgentLog = append(r.AgentLog, entry)
}

// UpdatedTime parses the freshness marker. The second return is false
// when the timestamp is missing or unparseable; such records sort last
// in recency ordering.
func (r *Record) UpdatedTime() (time.Time, bool) {
	if r == nil || r.UpdatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Checksum returns a short content fingerprint of the record, useful
// for spotting divergence between two reads of the same file.
func (r *Record) Checksum() string {
	if r == nil {
		return ""
	}
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
