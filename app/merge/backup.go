package merge

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// [BACKUP] Snapshot & rollback management
// -----------------------------------------------------------------------------

// backupSuffix is appended to a target path to name its sibling snapshot.
const backupSuffix = ".backup"

// BackupError reports a failed snapshot. A failed backup aborts the whole
// merge for that file: the engine never mutates a file it could not copy.
type BackupError struct {
	Path string
	Err  error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("could not back up %s: %v", e.Path, e.Err)
}

func (e *BackupError) Unwrap() error { return e.Err }

// WriteError reports a failed final write after a backup succeeded. Callers
// should restore from backup and surface the error.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("could not write merged file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// BackupPathFor returns the sibling backup path for the given target file.
func BackupPathFor(path string) string { return path + backupSuffix }

// CreateBackup copies the target file to its sibling backup path and returns
// that path. The copy preserves the exact bytes of the original.
func CreateBackup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &BackupError{Path: path, Err: err}
	}
	backupPath := BackupPathFor(path)
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", &BackupError{Path: path, Err: err}
	}
	return backupPath, nil
}

// RestoreFromBackup copies the sibling backup back over the target file.
func RestoreFromBackup(path string) error {
	data, err := os.ReadFile(BackupPathFor(path))
	if err != nil {
		return fmt.Errorf("could not read backup for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not restore %s from backup: %w", path, err)
	}
	return nil
}

// RemoveBackup deletes the sibling backup file. Callers treat failures as
// non-fatal cleanup noise.
func RemoveBackup(path string) error {
	return os.Remove(BackupPathFor(path))
}

// RollbackReport records the outcome of a batch rollback attempt.
// A candidate without a backup is not an error for the batch as a whole;
// it simply lands in Missing.
type RollbackReport struct {
	Restored []string
	Missing  []string
	Failed   map[string]error
}

// RollbackEntity attempts RestoreFromBackup for every candidate path and
// reports which succeeded, which had no backup, and which failed.
func RollbackEntity(candidatePaths []string) RollbackReport {
	report := RollbackReport{Failed: map[string]error{}}
	for _, path := range candidatePaths {
		if _, err := os.Stat(BackupPathFor(path)); os.IsNotExist(err) {
			report.Missing = append(report.Missing, path)
			continue
		}
		if err := RestoreFromBackup(path); err != nil {
			report.Failed[path] = err
			continue
		}
		report.Restored = append(report.Restored, path)
	}
	return report
}

// Summary renders a short human-readable account of the rollback.
func (r RollbackReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "restored %d file(s), %d without backup, %d failed",
		len(r.Restored), len(r.Missing), len(r.Failed))
	if len(r.Failed) > 0 {
		paths := make([]string, 0, len(r.Failed))
		for p := range r.Failed {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Fprintf(&b, "\n  %s: %v", p, r.Failed[p])
		}
	}
	return b.String()
}
