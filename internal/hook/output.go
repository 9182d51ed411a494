package hook

import (
	"encoding/json"
	"io"
)

// Hook event names used in hookSpecificOutput envelopes.
const (
	EventPreToolUse   = "PreToolUse"
	EventSessionStart = "SessionStart"
)

// Permission decisions for PreToolUse hooks.
const (
	PermissionAllow = "allow"
	PermissionDeny  = "deny"
)

// ExitBlockCompletion is the exit status signaling a hard completion
// block; the reason travels on stderr. Everything else exits 0.
const ExitBlockCompletion = 2

type stopDecision struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

type hookSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string `json:"additionalContext,omitempty"`
}

type hookEnvelope struct {
	HookSpecificOutput hookSpecificOutput `json:"hookSpecificOutput"`
}

// WriteStopBlock emits the termination-check block decision. Allow is
// signaled by writing nothing at all.
func WriteStopBlock(w io.Writer, reason string) error {
	return json.NewEncoder(w).Encode(stopDecision{Decision: "block", Reason: reason})
}

// WritePermissionDecision emits a pre-dispatch permission decision in
// the hookSpecificOutput envelope.
func WritePermissionDecision(w io.Writer, decision, reason string) error {
	return json.NewEncoder(w).Encode(hookEnvelope{
		HookSpecificOutput: hookSpecificOutput{
			HookEventName:            EventPreToolUse,
			PermissionDecision:       decision,
			PermissionDecisionReason: reason,
		},
	})
}

// WriteSessionContext emits additional context to inject at session
// start.
func WriteSessionContext(w io.Writer, context string) error {
	return json.NewEncoder(w).Encode(hookEnvelope{
		HookSpecificOutput: hookSpecificOutput{
			HookEventName:     EventSessionStart,
			AdditionalContext: context,
		},
	})
}
