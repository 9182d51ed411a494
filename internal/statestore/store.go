// Package statestore persists workflow state records on the local
// filesystem. It is the single place that touches workflow record files:
// path validation, atomic writes, and the read-modify-write cycle all
// live behind this package.
//
// Every operation is total. Enforcement hooks must never be wedged by a
// storage failure, so failures surface as nil/false sentinels rather
// than errors. The one fail-closed behavior is path validation, which
// rejects anything outside the allow-listed roots.
package statestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Iron-Ham/warden/internal/logging"
	"github.com/Iron-Ham/warden/internal/workflow"
)

// StateSuffix is the filename suffix identifying workflow record files.
const StateSuffix = ".state.json"

// Store reads and writes workflow records under an active/completed
// directory pair. Paths handed to Read/Write/Update are validated
// against the allowed roots before any filesystem access.
type Store struct {
	activeDir    string
	completedDir string
	allowedRoots []string
	logger       *logging.Logger
}

// Entry pairs a record with the path it was read from.
type Entry struct {
	Path   string
	Record *workflow.Record
}

// New creates a Store over the given workflows directory. Records live
// in workflowsDir/active and move to workflowsDir/completed when
// archived. scratchDir (typically os.TempDir()) is additionally
// allow-listed so counter and binding files can share the validator.
func New(workflowsDir, scratchDir string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Store{
		activeDir:    filepath.Join(workflowsDir, "active"),
		completedDir: filepath.Join(workflowsDir, "completed"),
		allowedRoots: []string{workflowsDir, scratchDir},
		logger:       logger,
	}
}

// AllowRoot adds a directory to the path validation allow list. The
// post-edit hook uses it to admit files under the working tree.
func (s *Store) AllowRoot(dir string) {
	if dir != "" {
		s.allowedRoots = append(s.allowedRoots, dir)
	}
}

// ActiveDir returns the directory holding in-flight workflow records.
func (s *Store) ActiveDir() string { return s.activeDir }

// CompletedDir returns the archive directory for finished workflows.
func (s *Store) CompletedDir() string { return s.completedDir }

// ValidatePath checks a path against the allow-listed roots and rejects
// traversal sequences, shell metacharacters, null bytes, and UNC-style
// prefixes. Returns the resolved absolute path, or "" when rejected.
// Rejection is the fail-closed default: an ambiguous path is never used.
func (s *Store) ValidatePath(path string) string {
	if path == "" {
		return ""
	}
	if strings.ContainsRune(path, 0) {
		return ""
	}
	if strings.Contains(path, "../") || strings.Contains(path, `..\`) {
		return ""
	}
	if strings.ContainsAny(path, "<>|\"'`$(){}") {
		return ""
	}
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, `\\`) {
		return ""
	}

	resolved, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	for _, root := range s.allowedRoots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if resolved == absRoot || strings.HasPrefix(resolved, absRoot+string(filepath.Separator)) {
			return resolved
		}
	}
	return ""
}

// Read loads and decodes the record at path. Returns nil on a rejected
// path, a missing file, or any decode failure.
func (s *Store) Read(path string) *workflow.Record {
	validated := s.ValidatePath(path)
	if validated == "" {
		return nil
	}
	data, err := os.ReadFile(validated)
	if err != nil {
		return nil
	}
	var rec workflow.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("unparseable state record", "path", validated, "error", err.Error())
		return nil
	}
	return &rec
}

// Write serializes the record and writes it atomically: the bytes go to
// a sibling temporary file which is then renamed over the target. The
// rename is the durability boundary; a failed write leaves the previous
// file intact and removes the temporary.
func (s *Store) Write(path string, rec *workflow.Record) bool {
	validated := s.ValidatePath(path)
	if validated == "" || rec == nil {
		return false
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return false
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(validated), 0755); err != nil {
		s.logger.Warn("state write failed", "path", validated, "error", err.Error())
		return false
	}
	if err := atomicWriteFile(validated, data, 0644); err != nil {
		s.logger.Warn("state write failed", "path", validated, "error", err.Error())
		return false
	}
	return true
}

// Update applies a read-modify-write cycle: load the current record,
// run the mutator, stamp updated_at, and write back atomically. Returns
// the written record, or nil if the record is unreadable, the mutator
// returns nil, or the mutator panics. A panicking mutator never mutates
// the file.
//
// The cycle is not atomic across processes; concurrent updates can race
// and one can overwrite the other. That lost-update risk is accepted:
// counters and gate state degrade toward "allow", never toward a wedge.
func (s *Store) Update(path string, mutate func(*workflow.Record) *workflow.Record) (updated *workflow.Record) {
	current := s.Read(path)
	if current == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("state mutator panicked", "path", path, "panic", r)
			updated = nil
		}
	}()

	next := mutate(current)
	if next == nil {
		return nil
	}
	next.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if !s.Write(path, next) {
		return nil
	}
	return next
}

// ListActive scans the active directory for record files and returns
// them sorted by updated_at descending. Records whose timestamp is
// missing or unparseable sort last. Unreadable files are skipped.
func (s *Store) ListActive() []Entry {
	dirents, err := os.ReadDir(s.activeDir)
	if err != nil {
		return nil
	}

	var entries []Entry
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), StateSuffix) {
			continue
		}
		path := filepath.Join(s.activeDir, d.Name())
		if rec := s.Read(path); rec != nil {
			entries = append(entries, Entry{Path: path, Record: rec})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ti, oki := entries[i].Record.UpdatedTime()
		tj, okj := entries[j].Record.UpdatedTime()
		if oki != okj {
			return oki // parseable timestamps sort before unparseable ones
		}
		return ti.After(tj)
	})
	return entries
}

// MostRecent returns the most recently updated active workflow, or nil
// when none exist. This is the unscoped lookup used by gate tracking;
// session-scoped hooks resolve through the binding registry instead.
func (s *Store) MostRecent() *Entry {
	entries := s.ListActive()
	if len(entries) == 0 {
		return nil
	}
	return &entries[0]
}

// FindOrphans returns paths of human-readable workflow documents in the
// active directory (.org/.md) that have no sibling state record.
func (s *Store) FindOrphans() []string {
	dirents, err := os.ReadDir(s.activeDir)
	if err != nil {
		return nil
	}

	states := make(map[string]bool)
	for _, d := range dirents {
		if strings.HasSuffix(d.Name(), StateSuffix) {
			states[strings.TrimSuffix(d.Name(), StateSuffix)] = true
		}
	}

	var orphans []string
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		ext := filepath.Ext(d.Name())
		if ext != ".org" && ext != ".md" {
			continue
		}
		base := strings.TrimSuffix(d.Name(), ext)
		if !states[base] {
			orphans = append(orphans, filepath.Join(s.activeDir, d.Name()))
		}
	}
	sort.Strings(orphans)
	return orphans
}

// Archive moves a completed workflow's record (and its paired document,
// if any) from the active directory to the completed directory. Returns
// false when nothing was moved.
func (s *Store) Archive(path string) bool {
	validated := s.ValidatePath(path)
	if validated == "" {
		return false
	}
	if err := os.MkdirAll(s.completedDir, 0755); err != nil {
		return false
	}

	dest := filepath.Join(s.completedDir, filepath.Base(validated))
	if err := os.Rename(validated, dest); err != nil {
		return false
	}

	// Move the paired org/md document alongside the record, best-effort.
	base := strings.TrimSuffix(filepath.Base(validated), StateSuffix)
	for _, ext := range []string{".org", ".md"} {
		doc := filepath.Join(filepath.Dir(validated), base+ext)
		if _, err := os.Stat(doc); err == nil {
			_ = os.Rename(doc, filepath.Join(s.completedDir, base+ext))
		}
	}
	return true
}
