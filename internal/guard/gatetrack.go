package guard

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/Iron-Ham/warden/internal/counter"
	"github.com/Iron-Ham/warden/internal/hook"
	"github.com/Iron-Ham/warden/internal/rules"
	"github.com/Iron-Ham/warden/internal/sessionbind"
	"github.com/Iron-Ham/warden/internal/workflow"
)

// transcriptWindow is how much of the transcript tail is scanned for a
// verdict. Agents put their verdict at the end; reading more buys
// nothing and risks matching stale text.
const transcriptWindow = 2048

// Verdict is the best-effort classification of an agent's outcome.
type Verdict string

const (
	VerdictPassed  Verdict = "passed"
	VerdictFailed  Verdict = "failed"
	VerdictUnknown Verdict = "unknown"
)

// TrackSubagent consumes a sub-agent completion event: it maps the
// agent type to a gate, extracts a best-effort verdict from the
// transcript tail, and mutates the workflow record accordingly. It
// never blocks; the return value exists for logging and tests.
//
// Unlike the session-scoped enforcement points, tracking resolves the
// workflow through the unscoped most-recent lookup: completion events
// can arrive without a usable session context, and losing a gate
// transition is worse than attributing it through recency.
func (e *Env) TrackSubagent(in hook.Input) Verdict {
	log := e.Logger.WithHook("subagent-track")

	if in.AgentType == "" {
		return VerdictUnknown
	}
	gateName := rules.GateForAgent(in.AgentType)
	if gateName == "" {
		log.Debug("no gate mapping for agent type", "agent_type", in.AgentType)
		return VerdictUnknown
	}

	active := e.Store.MostRecent()
	if active == nil {
		return VerdictUnknown
	}

	verdict := ReadVerdict(in.AgentTranscriptPath)

	updated := e.Store.Update(active.Path, func(state *workflow.Record) *workflow.Record {
		gate := state.EnsureGate(gateName)
		gate.Iteration++

		switch verdict {
		case VerdictPassed:
			gate.Status = workflow.GatePassed
			state.AdvancePast(gateName)
		case VerdictFailed:
			gate.Status = workflow.GateFailed
		default:
			// No clear verdict: only promote a pending gate.
			if gate.Status == workflow.GatePending {
				gate.Status = workflow.GateInProgress
			}
		}

		state.AppendLog(workflow.LogEntry{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			AgentType: in.AgentType,
			Gate:      gateName,
			Verdict:   string(verdict),
			Iteration: gate.Iteration,
			AgentID:   in.AgentID,
		})
		return state
	})

	if updated == nil {
		log.Warn("gate update failed", "gate", gateName, "agent_type", in.AgentType)
		return verdict
	}

	if verdict == VerdictPassed {
		// Gate progress is evidence the session is moving; reset the
		// stop guard's consecutive-block counter.
		if sessionbind.ValidSessionID(in.SessionID) {
			counter.Reset(e.Bindings.StopCounterFile(in.SessionID))
		}
		log.Info("gate passed", "gate", gateName, "agent_type", in.AgentType)
	} else {
		log.Info("gate updated", "gate", gateName, "agent_type", in.AgentType, "verdict", string(verdict))
	}
	return verdict
}

// ReadVerdict classifies the final window of the transcript at path.
// An absent or unreadable transcript yields VerdictUnknown.
func ReadVerdict(path string) Verdict {
	if path == "" {
		return VerdictUnknown
	}
	f, err := os.Open(path)
	if err != nil {
		return VerdictUnknown
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return VerdictUnknown
	}
	offset := info.Size() - transcriptWindow
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return VerdictUnknown
	}
	tail, err := io.ReadAll(io.LimitReader(f, transcriptWindow))
	if err != nil {
		return VerdictUnknown
	}
	return ClassifyVerdict(string(tail))
}

// ClassifyVerdict applies the keyword heuristic to a transcript window.
// It is deliberately a plain string predicate so a structured verdict
// signal can replace it without touching the state machine.
func ClassifyVerdict(window string) Verdict {
	upper := strings.ToUpper(window)
	switch {
	case strings.Contains(upper, "PASS") || strings.Contains(upper, "APPROVED"):
		return VerdictPassed
	case strings.Contains(upper, "FAIL") || strings.Contains(upper, "REJECTED"):
		return VerdictFailed
	default:
		return VerdictUnknown
	}
}
