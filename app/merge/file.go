package merge

import (
	"fmt"
	"os"
	"sync"

	"github.com/sharpsmith/sharpmerge-cli/app/cli"
)

// -----------------------------------------------------------------------------
// [FILE] One file's merge: backup -> decide loop -> commit
// -----------------------------------------------------------------------------

// FileStatus is the terminal outcome of one file's merge.
type FileStatus int

const (
	StatusMerged FileStatus = iota
	StatusSkipped
	StatusError
)

func (s FileStatus) String() string {
	switch s {
	case StatusMerged:
		return "merged"
	case StatusSkipped:
		return "skipped"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// FileResult summarizes one file's merge for reporting.
type FileResult struct {
	GeneratedPath string
	ExistingPath  string
	Status        FileStatus
	Message       string
	Inserted      int
	Replaced      int
	Skipped       int
	Preserved     []string // hand-written methods kept as-is
	Conflicts     []string
	BackupPath    string
}

// DecideFunc supplies the decision for one pending item. Interactive drivers
// may show the item any number of times before returning; the engine only
// sees the terminal decision.
type DecideFunc func(Item) Decision

// AcceptAll accepts every new member and replaces every conflict.
func AcceptAll(Item) Decision { return DecisionAccept }

// AcceptNewOnly accepts new members but keeps the existing side of conflicts.
func AcceptNewOnly(item Item) Decision {
	if item.IsConflict() {
		return DecisionKeepExisting
	}
	return DecisionAccept
}

// fileLocks serializes merges of the same target path so two merges never
// race on one backup file. Distinct files may merge in parallel.
var fileLocks sync.Map

func lockFor(path string) *sync.Mutex {
	mu, _ := fileLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// EnsureBackup snapshots the target before the first mutation. It is
// idempotent per session and must succeed before any decision is applied.
func (s *Session) EnsureBackup() error {
	if s.BackupPath != "" {
		return nil
	}
	backupPath, err := CreateBackup(s.ExistingPath)
	if err != nil {
		return err
	}
	s.BackupPath = backupPath
	return nil
}

// Commit writes the working buffer back to the target file and produces the
// session's FileResult. When nothing was applied the file is left untouched
// and the snapshot is removed. A failed write restores the backup.
func (s *Session) Commit() FileResult {
	result := FileResult{
		GeneratedPath: s.GeneratedPath,
		ExistingPath:  s.ExistingPath,
		Inserted:      s.inserted,
		Replaced:      s.replaced,
		Skipped:       s.skipped,
		Conflicts:     s.analysis.Conflicts,
		BackupPath:    s.BackupPath,
	}
	for _, m := range s.analysis.RemovedMethods {
		result.Preserved = append(result.Preserved, m.Name)
	}

	if s.AppliedCount() == 0 {
		result.Status = StatusSkipped
		result.Message = "no changes applied"
		if s.BackupPath != "" {
			if err := RemoveBackup(s.ExistingPath); err != nil && cli.IsDebugEnabled() {
				fmt.Fprintf(os.Stderr, "cleanup: could not remove %s: %v\n", s.BackupPath, err)
			}
			result.BackupPath = ""
		}
		return result
	}

	if err := os.WriteFile(s.ExistingPath, []byte(s.unit.Source), 0o644); err != nil {
		writeErr := &WriteError{Path: s.ExistingPath, Err: err}
		if restoreErr := RestoreFromBackup(s.ExistingPath); restoreErr != nil {
			result.Message = fmt.Sprintf("%v (restore also failed: %v)", writeErr, restoreErr)
		} else {
			result.Message = writeErr.Error()
		}
		result.Status = StatusError
		return result
	}

	result.Status = StatusMerged
	result.Message = fmt.Sprintf("%d inserted, %d replaced, %d skipped", s.inserted, s.replaced, s.skipped)
	return result
}

// OpenSession reads both files and builds a Session for drivers that feed
// decisions incrementally (the interactive review screens).
func OpenSession(generatedPath, existingPath string) (*Session, error) {
	genData, err := os.ReadFile(generatedPath)
	if err != nil {
		return nil, fmt.Errorf("could not read generated file %s: %w", generatedPath, err)
	}
	existData, err := os.ReadFile(existingPath)
	if err != nil {
		return nil, fmt.Errorf("could not read target file %s: %w", existingPath, err)
	}
	session := NewSession(string(genData), string(existData), existingPath)
	session.GeneratedPath = generatedPath
	return session, nil
}

// MergeFile runs one complete merge of generatedPath into existingPath,
// consulting decide for every pending item. Errors local to one file are
// returned in the result, never propagated, so a batch can keep going.
func MergeFile(generatedPath, existingPath string, decide DecideFunc) FileResult {
	mu := lockFor(existingPath)
	mu.Lock()
	defer mu.Unlock()

	session, err := OpenSession(generatedPath, existingPath)
	if err != nil {
		return FileResult{
			GeneratedPath: generatedPath,
			ExistingPath:  existingPath,
			Status:        StatusError,
			Message:       err.Error(),
		}
	}

	if session.Done() {
		result := session.Commit()
		result.GeneratedPath = generatedPath
		if !session.Analysis().HasPendingWork() {
			result.Message = "already up to date"
		}
		return result
	}

	if err := session.EnsureBackup(); err != nil {
		return FileResult{
			GeneratedPath: generatedPath,
			ExistingPath:  existingPath,
			Status:        StatusError,
			Message:       err.Error(),
		}
	}

	for {
		item, ok := session.Current()
		if !ok {
			break
		}
		if err := session.Apply(decide(item)); err != nil {
			if cli.IsVerboseEnabled() {
				fmt.Fprintf(os.Stderr, "skipping %s %s: %v\n", item.Kind, item.Title(), err)
			}
			if skipErr := session.Apply(DecisionSkip); skipErr != nil {
				break
			}
		}
	}

	result := session.Commit()
	result.GeneratedPath = generatedPath
	return result
}
