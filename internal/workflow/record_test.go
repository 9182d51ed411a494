package workflow

import (
	"testing"
	"time"
)

func testRecord() *Record {
	return &Record{
		WorkflowID: "wf-test",
		Workflow:   Meta{Type: "feature"},
		Mode:       Mode{Current: "standard"},
		Phase: &Phase{
			Current:   "implementation",
			Remaining: []string{"implementation", "code_review"},
			Completed: []string{"planning"},
		},
		Gates: map[string]*Gate{
			"planning":       {Status: GatePassed, Iteration: 1},
			"implementation": {Status: GateInProgress, Iteration: 2},
			"code_review":    {Status: GatePending},
		},
	}
}

func TestAllMandatoryGatesPassed(t *testing.T) {
	tests := []struct {
		name  string
		gates map[string]*Gate
		want  bool
	}{
		{
			name:  "all passed",
			gates: map[string]*Gate{"a": {Status: GatePassed}, "b": {Status: GatePassed}},
			want:  true,
		},
		{
			name:  "skipped gates are not mandatory",
			gates: map[string]*Gate{"a": {Status: GatePassed}, "b": {Status: GateSkipped}},
			want:  true,
		},
		{
			name:  "pending gate blocks completion",
			gates: map[string]*Gate{"a": {Status: GatePassed}, "b": {Status: GatePending}},
			want:  false,
		},
		{
			name:  "failed gate blocks completion",
			gates: map[string]*Gate{"a": {Status: GateFailed}},
			want:  false,
		},
		{
			name:  "zero gates is not complete",
			gates: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{Gates: tt.gates}
			if got := r.AllMandatoryGatesPassed(); got != tt.want {
				t.Errorf("AllMandatoryGatesPassed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllMandatoryGatesPassed_NilRecord(t *testing.T) {
	var r *Record
	if r.AllMandatoryGatesPassed() {
		t.Error("nil record should not be complete")
	}
}

func TestPendingGates(t *testing.T) {
	r := testRecord()

	pending := r.PendingGates()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending gates, got %d", len(pending))
	}
	// Sorted by name for stable messages.
	if pending[0].Name != "code_review" || pending[1].Name != "implementation" {
		t.Errorf("unexpected pending order: %v, %v", pending[0].Name, pending[1].Name)
	}
}

func TestPendingGates_Empty(t *testing.T) {
	r := &Record{}
	if got := r.PendingGates(); got != nil {
		t.Errorf("expected nil for record without gates, got %v", got)
	}
}

func TestAdvancePast(t *testing.T) {
	r := testRecord()

	r.AdvancePast("implementation")

	if len(r.Phase.Remaining) != 1 || r.Phase.Remaining[0] != "code_review" {
		t.Errorf("remaining = %v, want [code_review]", r.Phase.Remaining)
	}
	if !containsString(r.Phase.Completed, "implementation") {
		t.Errorf("completed = %v, missing implementation", r.Phase.Completed)
	}
	if r.Phase.Current != "code_review" {
		t.Errorf("current = %q, want code_review", r.Phase.Current)
	}
}

func TestAdvancePast_LastPhase(t *testing.T) {
	r := testRecord()

	r.AdvancePast("implementation")
	r.AdvancePast("code_review")

	if r.Phase.Current != PhaseCompleted {
		t.Errorf("current = %q, want %q", r.Phase.Current, PhaseCompleted)
	}
	if len(r.Phase.Remaining) != 0 {
		t.Errorf("remaining = %v, want empty", r.Phase.Remaining)
	}
}

func TestAdvancePast_Idempotent(t *testing.T) {
	r := testRecord()

	r.AdvancePast("implementation")
	r.AdvancePast("implementation")

	count := 0
	for _, name := range r.Phase.Completed {
		if name == "implementation" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("implementation appears %d times in completed, want 1", count)
	}
}

func TestEnsureGate(t *testing.T) {
	r := &Record{}

	g := r.EnsureGate("tests")
	if g.Status != GatePending || g.Iteration != 0 {
		t.Errorf("new gate = %+v, want pending/0", g)
	}

	g.Iteration = 3
	again := r.EnsureGate("tests")
	if again.Iteration != 3 {
		t.Error("EnsureGate should return the existing gate")
	}
}

func TestUpdatedTime(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	r := &Record{UpdatedAt: now.Format(time.RFC3339Nano)}

	got, ok := r.UpdatedTime()
	if !ok {
		t.Fatal("expected a parseable timestamp")
	}
	if !got.Equal(now) {
		t.Errorf("UpdatedTime() = %v, want %v", got, now)
	}

	for _, bad := range []string{"", "not-a-time", "2026-99-99"} {
		r := &Record{UpdatedAt: bad}
		if _, ok := r.UpdatedTime(); ok {
			t.Errorf("UpdatedTime(%q) should not parse", bad)
		}
	}
}

func TestChecksum(t *testing.T) {
	r := testRecord()

	sum := r.Checksum()
	if len(sum) != 16 {
		t.Fatalf("checksum length = %d, want 16", len(sum))
	}
	if r.Checksum() != sum {
		t.Error("checksum should be deterministic")
	}

	r.Gates["code_review"].Status = GatePassed
	if r.Checksum() == sum {
		t.Error("checksum should change when the record changes")
	}
}
