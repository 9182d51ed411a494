package validate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCheckJSON(t *testing.T) {
	if got := CheckJSON(writeFile(t, "ok.json", `{"a": [1, 2, 3]}`)); got != "" {
		t.Fatalf("valid JSON reported: %q", got)
	}

	got := CheckJSON(writeFile(t, "bad.json", `{"a": [1, 2,}`))
	if got == "" {
		t.Fatal("invalid JSON produced no report")
	}
	if !strings.Contains(got, "bad.json") {
		t.Fatalf("report must name the file: %q", got)
	}

	if got := CheckJSON(filepath.Join(t.TempDir(), "missing.json")); got != "" {
		t.Fatalf("unreadable file reported: %q", got)
	}
}

func TestCheckUnhandledExtension(t *testing.T) {
	v := New(0, nil)
	if got := v.Check(context.Background(), writeFile(t, "notes.txt", "hello")); got != "" {
		t.Fatalf("unhandled extension reported: %q", got)
	}
}

func TestCheckMissingToolchainIsSilent(t *testing.T) {
	v := New(0, nil)
	v.lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}
	if got := v.Check(context.Background(), writeFile(t, "main.ts", "let x =")); got != "" {
		t.Fatalf("missing toolchain must be silent, got %q", got)
	}
	if got := v.Check(context.Background(), writeFile(t, "app.php", "<?php syntax error")); got != "" {
		t.Fatalf("missing toolchain must be silent, got %q", got)
	}
}

func TestPythonCommandFallback(t *testing.T) {
	v := New(0, nil)
	v.lookPath = func(bin string) (string, error) {
		if bin == "python3" {
			return "/usr/bin/python3", nil
		}
		return "", errors.New("not found")
	}
	if got := v.pythonCommand(); got != "python3" {
		t.Fatalf("pythonCommand = %q, want python3", got)
	}

	v.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if got := v.pythonCommand(); got != "python" {
		t.Fatalf("pythonCommand = %q, want python", got)
	}
}

func TestRelevantLines(t *testing.T) {
	out := strings.Join([]string{
		"compiling...",
		"main.ts(3,5): error TS1005: ';' expected.",
		"unrelated noise",
		"Syntax check failed",
		"error: second problem",
		"error: third problem",
		"error: fourth problem",
		"error: fifth problem",
		"error: sixth problem",
	}, "\n")

	got := relevantLines(out, "main.ts")
	lines := strings.Split(got, "\n")
	if len(lines) != 5 {
		t.Fatalf("report has %d lines, want 5:\n%s", len(lines), got)
	}
	if lines[0] != "main.ts(3,5): error TS1005: ';' expected." {
		t.Fatalf("first line = %q", lines[0])
	}
	if strings.Contains(got, "unrelated noise") || strings.Contains(got, "compiling") {
		t.Fatalf("irrelevant lines kept:\n%s", got)
	}

	if got := relevantLines("all good", "main.ts"); got != "" {
		t.Fatalf("no relevant lines should yield empty report, got %q", got)
	}
}

func TestAlignOrgTables(t *testing.T) {
	in := strings.Join([]string{
		"* Heading",
		"| Name | Status |",
		"|---+---|",
		"| planner | passed |",
		"| code review agent | pending |",
		"",
		"plain text",
	}, "\n")

	want := strings.Join([]string{
		"* Heading",
		"| Name              | Status  |",
		"|-------------------+---------|",
		"| planner           | passed  |",
		"| code review agent | pending |",
		"",
		"plain text",
	}, "\n")

	if got := AlignOrgTables(in); got != want {
		t.Fatalf("alignment mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestAlignOrgTablesIndentAndPadding(t *testing.T) {
	in := strings.Join([]string{
		"  | a | bb | ccc |",
		"  | dddd | e |",
	}, "\n")
	want := strings.Join([]string{
		"  | a    | bb | ccc |",
		"  | dddd | e  |     |",
	}, "\n")
	if got := AlignOrgTables(in); got != want {
		t.Fatalf("alignment mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestAlignOrgTablesIdempotent(t *testing.T) {
	once := AlignOrgTables("| x | y |\n| long cell | z |")
	twice := AlignOrgTables(once)
	if once != twice {
		t.Fatalf("alignment not idempotent:\nonce:\n%s\ntwice:\n%s", once, twice)
	}
}

func TestAlignOrgFileRewritesOnlyWhenChanged(t *testing.T) {
	path := writeFile(t, "notes.org", "| a | b |\n| cc | d |\n")
	if err := AlignOrgFile(path); err != nil {
		t.Fatalf("align: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := "| a  | b |\n| cc | d |\n"
	if string(data) != want {
		t.Fatalf("file content:\n%q\nwant:\n%q", string(data), want)
	}

	if err := AlignOrgFile(filepath.Join(t.TempDir(), "missing.org")); err == nil {
		t.Fatal("missing file must return an error")
	}
}
