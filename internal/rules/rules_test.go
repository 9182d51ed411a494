package rules

import "testing"

func TestIsModelForbidden(t *testing.T) {
	tests := []struct {
		mode  string
		model string
		want  bool
	}{
		{"eco", "opus", true},
		{"turbo", "opus", true},
		{"eco", "haiku", false},
		{"eco", "sonnet", false},
		{"standard", "opus", false},
		{"thorough", "opus", false},
		{"swarm", "opus", false},
		{"nonexistent", "opus", false},
	}

	for _, tt := range tests {
		if got := IsModelForbidden(tt.mode, tt.model); got != tt.want {
			t.Errorf("IsModelForbidden(%q, %q) = %v, want %v", tt.mode, tt.model, got, tt.want)
		}
	}
}

func TestPreferredModel(t *testing.T) {
	if got := PreferredModel("eco"); got != "haiku" {
		t.Errorf("PreferredModel(eco) = %q, want haiku", got)
	}
	if got := PreferredModel("standard"); got != "sonnet" {
		t.Errorf("PreferredModel(standard) = %q, want sonnet", got)
	}
	if got := PreferredModel("nonexistent"); got != "sonnet" {
		t.Errorf("PreferredModel(nonexistent) = %q, want sonnet", got)
	}
}

func TestGateForAgent(t *testing.T) {
	if got := GateForAgent("workflow:reviewer"); got != "code_review" {
		t.Errorf("GateForAgent(workflow:reviewer) = %q, want code_review", got)
	}
	if got := GateForAgent("workflow:mystery"); got != "" {
		t.Errorf("GateForAgent(workflow:mystery) = %q, want empty", got)
	}
}

func TestEveryMappedGateAppearsInAPhaseOrder(t *testing.T) {
	known := make(map[string]bool)
	for _, p := range PhaseOrder {
		known[p] = true
	}
	for _, p := range E2EPhaseOrder {
		known[p] = true
	}
	// Gates outside the two canonical tracks are still tracked, but the
	// core progression gates must be orderable.
	for _, gate := range []string{"planning", "implementation", "code_review", "quality_gate", "completion_guard"} {
		if !known[gate] {
			t.Errorf("gate %q missing from phase orders", gate)
		}
	}
}
