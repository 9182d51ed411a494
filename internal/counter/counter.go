// Package counter implements the small keyed scratch counters backing
// the enforcement safety valves: the consecutive stop-block count, the
// per-(mode,model) deny counts, the per-task completion-block count,
// and the staleness snapshot.
//
// Counters are advisory, never authoritative. Every operation is total:
// a read of a missing or mangled file is zero, a failed write is
// silently dropped. Losing an update only delays a safety-valve trip,
// it never blocks progress. There is no locking around the
// read-increment-write cycle; concurrent hooks can lose increments
// within the same bounded error margin.
package counter

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// Value reads the integer counter stored at path. Missing or
// unparseable files read as 0.
func Value(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Increment bumps the counter at path by one and returns the new value.
// The write is best-effort; the returned value reflects the intended
// count even if persisting it failed.
func Increment(path string) int {
	n := Value(path) + 1
	_ = os.WriteFile(path, []byte(strconv.Itoa(n)), 0644)
	return n
}

// Reset removes the counter file, best-effort.
func Reset(path string) {
	_ = os.Remove(path)
}

// MapValue reads one key from the JSON object counter at path.
func MapValue(path, key string) int {
	m := readMap(path)
	return m[key]
}

// MapIncrement bumps one key in the JSON object counter at path and
// returns the new value for that key.
func MapIncrement(path, key string) int {
	m := readMap(path)
	m[key]++
	writeMap(path, m)
	return m[key]
}

// MapReset zeroes one key in the JSON object counter, leaving other
// keys untouched.
func MapReset(path, key string) {
	m := readMap(path)
	if _, ok := m[key]; !ok {
		return
	}
	m[key] = 0
	writeMap(path, m)
}

func readMap(path string) map[string]int {
	m := make(map[string]int)
	data, err := os.ReadFile(path)
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return make(map[string]int)
	}
	return m
}

func writeMap(path string, m map[string]int) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0644)
}
