package counter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValue_MissingOrGarbled(t *testing.T) {
	dir := t.TempDir()

	if got := Value(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("missing file Value = %d, want 0", got)
	}

	garbled := filepath.Join(dir, "garbled")
	os.WriteFile(garbled, []byte("not a number"), 0644)
	if got := Value(garbled); got != 0 {
		t.Errorf("garbled file Value = %d, want 0", got)
	}

	negative := filepath.Join(dir, "negative")
	os.WriteFile(negative, []byte("-5"), 0644)
	if got := Value(negative); got != 0 {
		t.Errorf("negative file Value = %d, want 0", got)
	}
}

func TestIncrementResetCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count")

	for want := 1; want <= 5; want++ {
		if got := Increment(path); got != want {
			t.Fatalf("Increment #%d = %d", want, got)
		}
	}
	if got := Value(path); got != 5 {
		t.Errorf("Value after increments = %d, want 5", got)
	}

	Reset(path)
	if got := Value(path); got != 0 {
		t.Errorf("Value after Reset = %d, want 0", got)
	}
	Reset(path) // resetting a missing counter is a no-op
}

func TestValue_TrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count")
	os.WriteFile(path, []byte(" 4\n"), 0644)
	if got := Value(path); got != 4 {
		t.Errorf("Value = %d, want 4", got)
	}
}

func TestMapCounters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deny.json")

	if got := MapValue(path, "eco-opus"); got != 0 {
		t.Errorf("missing map Value = %d, want 0", got)
	}

	MapIncrement(path, "eco-opus")
	MapIncrement(path, "eco-opus")
	MapIncrement(path, "turbo-opus")

	if got := MapValue(path, "eco-opus"); got != 2 {
		t.Errorf("eco-opus = %d, want 2", got)
	}
	if got := MapValue(path, "turbo-opus"); got != 1 {
		t.Errorf("turbo-opus = %d, want 1", got)
	}

	// Resetting one key leaves the others alone.
	MapReset(path, "eco-opus")
	if got := MapValue(path, "eco-opus"); got != 0 {
		t.Errorf("eco-opus after reset = %d, want 0", got)
	}
	if got := MapValue(path, "turbo-opus"); got != 1 {
		t.Errorf("turbo-opus after unrelated reset = %d, want 1", got)
	}
}

func TestMapIncrement_GarbledFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deny.json")
	os.WriteFile(path, []byte("[]"), 0644)

	if got := MapIncrement(path, "k"); got != 1 {
		t.Errorf("MapIncrement over garbled file = %d, want 1", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale")

	if s := ReadSnapshot(path); s != (Snapshot{}) {
		t.Errorf("missing snapshot = %+v, want zero", s)
	}

	WriteSnapshot(path, Snapshot{UpdatedAt: "2026-01-02T03:04:05Z", Count: 2})
	s := ReadSnapshot(path)
	if s.UpdatedAt != "2026-01-02T03:04:05Z" || s.Count != 2 {
		t.Errorf("snapshot = %+v", s)
	}

	ClearSnapshot(path)
	if s := ReadSnapshot(path); s != (Snapshot{}) {
		t.Errorf("snapshot after clear = %+v, want zero", s)
	}
}
