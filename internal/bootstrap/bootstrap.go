// Package bootstrap creates the on-disk directory layout everything
// else assumes. Initialization is idempotent; rerunning it is always
// safe.
package bootstrap

import (
	"os"
	"path/filepath"
)

// DirStatus is the per-directory outcome of one initialization run.
type DirStatus struct {
	Path   string
	Status string // "created", "exists", or "error"
	Err    error
}

// Result summarizes one initialization run.
type Result struct {
	Directories []DirStatus
	Errors      []DirStatus
}

// OK reports whether every directory was usable.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Layout lists every directory the tools require, anchored at baseDir
// (conventionally ~/.claude).
func Layout(baseDir string) []string {
	return []string{
		filepath.Join(baseDir, "workflows"),
		filepath.Join(baseDir, "workflows", "active"),
		filepath.Join(baseDir, "workflows", "completed"),
		filepath.Join(baseDir, "workflows", "context"),
		filepath.Join(baseDir, "workflows", "memory"),
		filepath.Join(baseDir, "plans"),
		filepath.Join(baseDir, "skills"),
		filepath.Join(baseDir, "skills", "learned"),
	}
}

// Initialize creates the full layout. Newly created directories get a
// .gitkeep so they survive version control.
func Initialize(baseDir string) *Result {
	res := &Result{}
	for _, dir := range Layout(baseDir) {
		st := ensureDir(dir)
		res.Directories = append(res.Directories, st)
		if st.Status == "error" {
			res.Errors = append(res.Errors, st)
			continue
		}
		if st.Status == "created" {
			ensureGitkeep(dir)
		}
	}
	return res
}

// Check reports which layout directories are missing without creating
// anything.
func Check(baseDir string) (missing []string) {
	for _, dir := range Layout(baseDir) {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}
	return missing
}

func ensureDir(dir string) DirStatus {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return DirStatus{Path: dir, Status: "exists"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return DirStatus{Path: dir, Status: "error", Err: err}
	}
	return DirStatus{Path: dir, Status: "created"}
}

// ensureGitkeep drops a .gitkeep into an empty directory.
func ensureGitkeep(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	_ = os.WriteFile(filepath.Join(dir, ".gitkeep"), nil, 0o644)
}
