package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_WritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "hook.log")

	logger := Open(logPath, LevelInfo, DefaultRotationConfig())
	logger.WithHook("stop-guard").WithSession("sess-1").Info("blocked", "count", 2)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["hook"] != "stop-guard" {
		t.Errorf("hook = %v, want stop-guard", entry["hook"])
	}
	if entry["session_id"] != "sess-1" {
		t.Errorf("session_id = %v, want sess-1", entry["session_id"])
	}
	if entry["msg"] != "blocked" {
		t.Errorf("msg = %v, want blocked", entry["msg"])
	}
}

func TestOpen_LevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "hook.log")

	logger := Open(logPath, LevelWarn, DefaultRotationConfig())
	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	logger.Close()

	data, _ := os.ReadFile(logPath)
	lines := strings.Count(string(data), "\n")
	if lines != 1 {
		t.Errorf("expected 1 log line, got %d: %s", lines, data)
	}
}

func TestOpen_BadPathFallsBackToNop(t *testing.T) {
	// A directory cannot be opened as a file; Open must degrade to nop
	// rather than fail the hook.
	dir := t.TempDir()
	logger := Open(dir, LevelInfo, DefaultRotationConfig())
	logger.Info("goes nowhere")
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nop fallback returned error: %v", err)
	}
}

func TestRotatingWriter_Rotates(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "hook.log")

	w, err := NewRotatingWriter(logPath, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer w.Close()

	chunk := strings.Repeat("x", 512*1024)
	for i := 0; i < 4; i++ {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Errorf("expected backup file after rotation: %v", err)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Info("discarded", "k", "v")
	if err := logger.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}
