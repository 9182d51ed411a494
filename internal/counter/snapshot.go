package counter

import (
	"encoding/json"
	"os"
)

// Snapshot records the workflow freshness marker observed on a block
// attempt, plus how many consecutive attempts have seen it unchanged.
// The stop guard uses it to detect a wedged workflow independently of
// the block-count ceiling.
type Snapshot struct {
	UpdatedAt string `json:"updated_at"`
	Count     int    `json:"count"`
}

// ReadSnapshot loads the staleness snapshot at path. A missing or
// unparseable snapshot reads as empty.
func ReadSnapshot(path string) Snapshot {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}
	}
	return s
}

// WriteSnapshot persists the snapshot, best-effort.
func WriteSnapshot(path string, s Snapshot) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0644)
}

// ClearSnapshot removes the snapshot file, best-effort.
func ClearSnapshot(path string) {
	_ = os.Remove(path)
}
