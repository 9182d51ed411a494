// Package validate runs best-effort syntax checks on freshly edited
// files. Each file extension dispatches to a checker; languages with a
// toolchain on PATH get an external run under a hard timeout, JSON is
// checked in-process, and org files get their tables realigned.
//
// Validation is advisory. A missing toolchain, a timeout, or any
// internal failure produces an empty report, never an error the caller
// has to handle.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iron-Ham/warden/internal/logging"
)

// DefaultTimeout bounds one external checker run.
const DefaultTimeout = 15 * time.Second

// maxReportLines caps how much checker output is surfaced.
const maxReportLines = 5

// Validator dispatches post-edit syntax checks.
type Validator struct {
	timeout time.Duration
	logger  *logging.Logger

	// lookPath is swapped in tests to control toolchain discovery.
	lookPath func(string) (string, error)
}

// New returns a Validator. A non-positive timeout falls back to
// DefaultTimeout; a nil logger is replaced with a no-op one.
func New(timeout time.Duration, logger *logging.Logger) *Validator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Validator{timeout: timeout, logger: logger, lookPath: exec.LookPath}
}

// Check validates the file at path according to its extension and
// returns a human-readable report of any problems found. An empty
// report means the file is fine, the extension is unhandled, or the
// check could not run.
func (v *Validator) Check(ctx context.Context, path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx":
		return v.runChecker(ctx, path, "npx", "tsc", "--noEmit", "--skipLibCheck")
	case ".php":
		return v.runChecker(ctx, path, "php", "-l", path)
	case ".py":
		return v.runChecker(ctx, path, v.pythonCommand(), "-m", "py_compile", path)
	case ".json":
		return CheckJSON(path)
	case ".org":
		v.alignOrg(path)
		return ""
	default:
		return ""
	}
}

func (v *Validator) pythonCommand() string {
	if _, err := v.lookPath("python3"); err == nil {
		return "python3"
	}
	return "python"
}

// runChecker executes an external tool and distills its output into a
// short report. The binary missing from PATH short-circuits silently.
func (v *Validator) runChecker(ctx context.Context, path, bin string, args ...string) string {
	probe := bin
	if bin == "npx" {
		probe = "npm"
	}
	if _, err := v.lookPath(probe); err != nil {
		v.logger.Debug("validator toolchain not found", "bin", probe)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = filepath.Dir(path)
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		v.logger.Warn("validator timed out", "bin", bin, "file", path)
		return ""
	}
	if err == nil {
		return ""
	}

	report := relevantLines(string(out), filepath.Base(path))
	if report == "" {
		return ""
	}
	return fmt.Sprintf("Validation errors in %s:\n%s", filepath.Base(path), report)
}

// relevantLines filters raw checker output down to the lines that
// mention the file or look like errors, capped at maxReportLines.
func relevantLines(output, fileName string) string {
	var kept []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(line, fileName) ||
			strings.Contains(lower, "error") ||
			strings.Contains(lower, "syntax") {
			kept = append(kept, line)
			if len(kept) == maxReportLines {
				break
			}
		}
	}
	return strings.Join(kept, "\n")
}

// CheckJSON parses the file in-process and reports the first syntax
// problem. An unreadable file yields an empty report.
func CheckJSON(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Sprintf("JSON validation error in %s: %v", filepath.Base(path), err)
	}
	return ""
}

func (v *Validator) alignOrg(path string) {
	if err := AlignOrgFile(path); err != nil {
		v.logger.Debug("org table alignment skipped", "file", path, "err", err)
	}
}
