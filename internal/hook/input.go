// Package hook defines the event payload each warden invocation reads
// from stdin and the structured decision shapes it may write back.
// Decoding is forgiving: a missing, truncated, or malformed payload
// decodes to the zero Input so the caller can fail open.
package hook

import (
	"encoding/json"
	"io"
)

// MaxInputSize bounds how much of stdin a hook will read. Oversized
// payloads are treated as empty rather than parsed partially.
const MaxInputSize = 1 << 20 // 1MB

// ToolInput carries the tool-call parameters relevant to enforcement.
type ToolInput struct {
	Model    string `json:"model,omitempty"`
	Command  string `json:"command,omitempty"`
	FilePath string `json:"file_path,omitempty"`
}

// Input is the lifecycle event payload delivered on stdin. Only the
// fields a given hook cares about are populated for its event type.
type Input struct {
	SessionID      string    `json:"session_id"`
	StopHookActive bool      `json:"stop_hook_active"`
	ToolName       string    `json:"tool_name,omitempty"`
	ToolInput      ToolInput `json:"tool_input,omitempty"`

	// SubagentStop fields.
	AgentType           string `json:"agent_type,omitempty"`
	AgentID             string `json:"agent_id,omitempty"`
	AgentTranscriptPath string `json:"agent_transcript_path,omitempty"`

	// TaskCompleted fields. Subject/Description mirror alternate field
	// names some callers use.
	TaskID          string `json:"task_id,omitempty"`
	TaskSubject     string `json:"task_subject,omitempty"`
	Subject         string `json:"subject,omitempty"`
	TaskDescription string `json:"task_description,omitempty"`
	Description     string `json:"description,omitempty"`
}

// EffectiveSubject returns the task subject regardless of which field
// name the caller used.
func (in *Input) EffectiveSubject() string {
	if in.TaskSubject != "" {
		return in.TaskSubject
	}
	return in.Subject
}

// EffectiveDescription returns the task description regardless of which
// field name the caller used.
func (in *Input) EffectiveDescription() string {
	if in.TaskDescription != "" {
		return in.TaskDescription
	}
	return in.Description
}

// Decode reads one event payload from r. It never fails: absent, over-
// sized, or malformed input yields the zero Input.
func Decode(r io.Reader) Input {
	var in Input

	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil || len(data) == 0 || len(data) > MaxInputSize {
		return Input{}
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return Input{}
	}
	return in
}
