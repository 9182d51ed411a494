// Package rules holds the static policy tables the enforcement hooks
// consult: which models each operating mode forbids, which gate each
// sub-agent reports to, and the canonical phase orderings. These are
// enforceable rules, not advisory guidance.
package rules

// ModeConstraint declares the model policy for one operating mode.
type ModeConstraint struct {
	// Forbidden lists models that must not run under this mode.
	Forbidden []string
	// Preferred is the default model for this mode.
	Preferred string
	// Description is a short operator-facing summary.
	Description string
}

// ModeConstraints maps each operating mode to its model policy.
var ModeConstraints = map[string]ModeConstraint{
	"eco": {
		Forbidden:   []string{"opus"},
		Preferred:   "haiku",
		Description: "Budget-conscious, haiku only",
	},
	"turbo": {
		Forbidden:   []string{"opus"},
		Preferred:   "haiku",
		Description: "Speed-first, no opus",
	},
	"standard": {
		Forbidden:   []string{},
		Preferred:   "sonnet",
		Description: "Balanced, sonnet default",
	},
	"thorough": {
		Forbidden:   []string{},
		Preferred:   "sonnet",
		Description: "Quality-first, opus for reviews",
	},
	"swarm": {
		Forbidden:   []string{},
		Preferred:   "sonnet",
		Description: "Parallel execution, opus for validation",
	},
}

// AgentGates maps a sub-agent type to the gate it reports against.
// Agent types not listed here are ignored by gate tracking.
var AgentGates = map[string]string{
	"workflow:architect":         "planning",
	"workflow:architect-lite":    "planning",
	"workflow:executor":          "implementation",
	"workflow:executor-lite":     "implementation",
	"workflow:reviewer":          "code_review",
	"workflow:reviewer-lite":     "code_review",
	"workflow:reviewer-deep":     "code_review",
	"workflow:security":          "security_review",
	"workflow:security-lite":     "security_review",
	"workflow:security-deep":     "security_review",
	"workflow:test-writer":       "tests",
	"workflow:quality-gate":      "quality_gate",
	"workflow:completion-guard":  "completion_guard",
	"workflow:perf-reviewer":     "performance",
	"workflow:perf-lite":         "performance",
	"workflow:doc-writer":        "documentation",
	"workflow:codebase-analyzer": "codebase_analysis",
	"workflow:task-analyzer":     "task_analysis",
	"workflow:supervisor":        "orchestration",
	"workflow:e2e-explorer":      "e2e_exploration",
	"workflow:e2e-generator":     "e2e_generation",
	"workflow:e2e-reviewer":      "e2e_validation",
}

// PhaseOrder is the canonical flow through a development workflow.
var PhaseOrder = []string{
	"planning",
	"implementation",
	"code_review",
	"security_review",
	"tests",
	"quality_gate",
	"completion_guard",
}

// E2EPhaseOrder is the alternative track for end-to-end test workflows.
var E2EPhaseOrder = []string{
	"setup",
	"e2e_exploration",
	"e2e_generation",
	"e2e_validation",
	"quality_gate",
	"completion_guard",
}

// IsModelForbidden reports whether the mode forbids the model. Unknown
// modes forbid nothing.
func IsModelForbidden(mode, model string) bool {
	c, ok := ModeConstraints[mode]
	if !ok {
		return false
	}
	for _, f := range c.Forbidden {
		if f == model {
			return true
		}
	}
	return false
}

// GateForAgent returns the gate name for an agent type, or "" when the
// agent type has no gate mapping.
func GateForAgent(agentType string) string {
	return AgentGates[agentType]
}

// PreferredModel returns the preferred model for a mode, defaulting to
// sonnet for unknown modes.
func PreferredModel(mode string) string {
	if c, ok := ModeConstraints[mode]; ok {
		return c.Preferred
	}
	return "sonnet"
}
