// Package internal contains integration tests that drive the
// enforcement packages together the way the hook commands do: event
// payloads in through the JSON boundary, decisions out through the
// structured writers, workflow state mutating on disk in between.
package internal

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/warden/internal/guard"
	"github.com/Iron-Ham/warden/internal/hook"
	"github.com/Iron-Ham/warden/internal/sessionbind"
	"github.com/Iron-Ham/warden/internal/statestore"
	"github.com/Iron-Ham/warden/internal/workflow"
)

// newEnforcementEnv wires a store, a binding registry, and a guard
// environment over temp directories, mirroring what newApp does for
// the real commands.
func newEnforcementEnv(t *testing.T) *guard.Env {
	t.Helper()
	scratch := t.TempDir()
	store := statestore.New(t.TempDir(), scratch, nil)
	if err := os.MkdirAll(store.ActiveDir(), 0o755); err != nil {
		t.Fatalf("mkdir active: %v", err)
	}
	bindings := sessionbind.NewRegistry(scratch, store, nil)
	return guard.NewEnv(store, bindings, guard.DefaultThresholds(), nil)
}

func decodeEvent(t *testing.T, payload string) hook.Input {
	t.Helper()
	return hook.Decode(strings.NewReader(payload))
}

func writeTranscript(t *testing.T, verdict string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.md")
	body := "## Review\n\nLooked at the diff in detail.\n\nVerdict: " + verdict + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return path
}

// TestWorkflowEnforcementLifecycle walks one workflow from active
// enforcement to clean completion: the stop guard blocks while gates
// are open, the mode router rejects a forbidden model, sub-agent
// verdicts close the gates, and once everything has passed the same
// session stops and completes without interference.
func TestWorkflowEnforcementLifecycle(t *testing.T) {
	e := newEnforcementEnv(t)
	const sessionID = "sess-lifecycle"

	rec := &workflow.Record{
		WorkflowID: "wf-e2e",
		Workflow:   workflow.Meta{Type: "development", Description: "ship the parser"},
		Mode:       workflow.Mode{Current: "eco"},
		Phase: &workflow.Phase{
			Current:   "implementation",
			Remaining: []string{"implementation", "code_review"},
			Completed: []string{"planning"},
		},
		Gates: map[string]*workflow.Gate{
			"planning":       {Status: workflow.GatePassed, Iteration: 1},
			"implementation": {Status: workflow.GateInProgress, Iteration: 1},
			"code_review":    {Status: workflow.GatePending},
		},
		UpdatedAt: "2026-09-01T09:00:00.000000000Z",
	}
	statePath := filepath.Join(e.Store.ActiveDir(), "wf-e2e.state.json")
	if !e.Store.Write(statePath, rec) {
		t.Fatal("failed to seed workflow record")
	}
	if !e.Bindings.Bind(sessionID, statePath, "wf-e2e") {
		t.Fatal("failed to bind session")
	}

	// Stop while gates are open: blocked, with the open gates named in
	// the structured decision.
	in := decodeEvent(t, `{"session_id":"sess-lifecycle"}`)
	d := e.CheckStop(in)
	if d.Allow {
		t.Fatal("stop must be blocked while gates are open")
	}
	var out bytes.Buffer
	if err := hook.WriteStopBlock(&out, d.Reason); err != nil {
		t.Fatalf("WriteStopBlock: %v", err)
	}
	var block struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal(out.Bytes(), &block); err != nil {
		t.Fatalf("stop block is not JSON: %v", err)
	}
	if block.Decision != "block" {
		t.Errorf("decision = %q, want block", block.Decision)
	}
	for _, gate := range []string{"implementation", "code_review"} {
		if !strings.Contains(block.Reason, gate) {
			t.Errorf("block reason missing gate %q: %q", gate, block.Reason)
		}
	}

	// Dispatching a forbidden model under eco mode: denied through the
	// permission envelope.
	in = decodeEvent(t, `{"session_id":"sess-lifecycle","tool_name":"Task","tool_input":{"model":"opus"}}`)
	d = e.RouteTask(in)
	if d.Allow {
		t.Fatal("eco mode must deny opus dispatch")
	}
	out.Reset()
	if err := hook.WritePermissionDecision(&out, "deny", d.Reason); err != nil {
		t.Fatalf("WritePermissionDecision: %v", err)
	}
	if !strings.Contains(out.String(), `"permissionDecision":"deny"`) {
		t.Errorf("permission envelope missing deny decision: %s", out.String())
	}

	// The executor reports a passing verdict: the implementation gate
	// closes and the phase advances.
	in = decodeEvent(t, `{"session_id":"sess-lifecycle","agent_type":"workflow:executor","agent_transcript_path":`+quoteJSON(writeTranscript(t, "PASS"))+`}`)
	if v := e.TrackSubagent(in); v != guard.VerdictPassed {
		t.Fatalf("executor verdict = %q, want passed", v)
	}
	state := e.Store.Read(statePath)
	if state == nil {
		t.Fatal("workflow record vanished")
	}
	if got := state.Gates["implementation"].Status; got != workflow.GatePassed {
		t.Errorf("implementation gate = %q, want passed", got)
	}
	if state.Phase.Current != "code_review" {
		t.Errorf("phase = %q, want code_review", state.Phase.Current)
	}

	// A workflow-relevant task still cannot complete: code_review is
	// open.
	in = decodeEvent(t, `{"session_id":"sess-lifecycle","task_id":"task-1","task_subject":"finish workflow"}`)
	if d = e.CheckCompletion(in); d.Allow {
		t.Fatal("completion must be blocked while code_review is open")
	}
	if !strings.Contains(d.Reason, "code_review") {
		t.Errorf("completion block missing gate name: %q", d.Reason)
	}

	// The reviewer passes the final gate.
	in = decodeEvent(t, `{"session_id":"sess-lifecycle","agent_type":"workflow:reviewer","agent_transcript_path":`+quoteJSON(writeTranscript(t, "PASS"))+`}`)
	if v := e.TrackSubagent(in); v != guard.VerdictPassed {
		t.Fatalf("reviewer verdict = %q, want passed", v)
	}
	state = e.Store.Read(statePath)
	if !state.AllMandatoryGatesPassed() {
		t.Fatal("all gates should be passed after the reviewer's verdict")
	}

	// With every gate closed both enforcement points stand down.
	in = decodeEvent(t, `{"session_id":"sess-lifecycle","task_id":"task-1","task_subject":"finish workflow"}`)
	if d = e.CheckCompletion(in); !d.Allow {
		t.Fatalf("completion must be allowed once gates pass, got: %q", d.Reason)
	}
	in = decodeEvent(t, `{"session_id":"sess-lifecycle"}`)
	if d = e.CheckStop(in); !d.Allow {
		t.Fatalf("stop must be allowed once gates pass, got: %q", d.Reason)
	}

	// Session teardown removes the scratch files and unbinds.
	if removed := e.Bindings.CleanupSessionFiles(sessionID); removed == 0 {
		t.Error("cleanup removed no session files")
	}
	if e.Bindings.Resolve(sessionID) != nil {
		t.Error("session still resolves after cleanup")
	}
}

// TestSessionIsolationAcrossWorkflows runs two sessions bound to two
// workflows side by side and checks that enforcement state never leaks
// between them.
func TestSessionIsolationAcrossWorkflows(t *testing.T) {
	e := newEnforcementEnv(t)

	seed := func(id, mode string) string {
		rec := &workflow.Record{
			WorkflowID: id,
			Workflow:   workflow.Meta{Type: "development"},
			Mode:       workflow.Mode{Current: mode},
			Phase: &workflow.Phase{
				Current:   "implementation",
				Remaining: []string{"implementation"},
			},
			Gates: map[string]*workflow.Gate{
				"implementation": {Status: workflow.GateInProgress, Iteration: 1},
			},
			UpdatedAt: "2026-09-01T09:00:00.000000000Z",
		}
		path := filepath.Join(e.Store.ActiveDir(), id+".state.json")
		if !e.Store.Write(path, rec) {
			t.Fatalf("failed to seed %s", id)
		}
		return path
	}
	pathA := seed("wf-a", "eco")
	seed("wf-b", "standard")

	if !e.Bindings.Bind("sess-a", pathA, "wf-a") {
		t.Fatal("failed to bind sess-a")
	}

	// sess-a is bound to an incomplete workflow and gets blocked;
	// sess-b is bound to nothing and sails through, despite two
	// incomplete workflows sitting in the active directory.
	if d := e.CheckStop(hook.Input{SessionID: "sess-a"}); d.Allow {
		t.Fatal("bound session must be blocked")
	}
	if d := e.CheckStop(hook.Input{SessionID: "sess-b"}); !d.Allow {
		t.Fatalf("unbound session must be allowed, got: %q", d.Reason)
	}

	// Model policy follows each session's own workflow mode.
	opus := hook.Input{SessionID: "sess-a", ToolInput: hook.ToolInput{Model: "opus"}}
	if d := e.RouteTask(opus); d.Allow {
		t.Fatal("eco workflow must deny opus")
	}
	if !e.Bindings.Bind("sess-b", filepath.Join(e.Store.ActiveDir(), "wf-b.state.json"), "wf-b") {
		t.Fatal("failed to bind sess-b")
	}
	opus.SessionID = "sess-b"
	if d := e.RouteTask(opus); !d.Allow {
		t.Fatalf("standard workflow must allow opus, got: %q", d.Reason)
	}
}

// quoteJSON quotes a path for inline JSON payloads.
func quoteJSON(path string) string {
	b, _ := json.Marshal(path)
	return string(b)
}
