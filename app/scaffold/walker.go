package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// -----------------------------------------------------------------------------
// [SCAFFOLD] Template-tree vs target-tree classification
// -----------------------------------------------------------------------------

// FileClass says what the merge driver should do with one template file.
type FileClass int

const (
	// FileNew has no counterpart under the target root; it is copied verbatim.
	FileNew FileClass = iota
	// FileMergeCandidate has a counterpart; the merge engine runs on the pair.
	FileMergeCandidate
	// FileIgnored matched an exclude pattern or no include pattern.
	FileIgnored
)

func (c FileClass) String() string {
	switch c {
	case FileNew:
		return "new"
	case FileMergeCandidate:
		return "merge"
	case FileIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Pair couples one template file with its would-be location in the target
// tree. Pairing is purely by relative path; contents are never inspected.
type Pair struct {
	RelPath       string
	GeneratedPath string
	TargetPath    string
	Class         FileClass
}

// Walker scans a template tree and classifies each file against a target
// tree using doublestar include/exclude globs.
type Walker struct {
	includes []string
	excludes []string
}

// DefaultIncludes and DefaultExcludes cover the supported grammar: C# source,
// minus build output and designer-generated files the engine must not touch.
var (
	DefaultIncludes = []string{"**/*.cs"}
	DefaultExcludes = []string{"bin/**", "obj/**", "**/*.Designer.cs"}
)

// NewWalker builds a Walker; empty pattern lists fall back to the defaults.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	if len(excludes) == 0 {
		excludes = DefaultExcludes
	}
	return &Walker{includes: includes, excludes: excludes}
}

// ScanPair walks templateRoot and classifies every regular file against
// targetRoot. Results come back in walk order (lexical within a directory),
// so repeated scans of the same trees are deterministic.
func (w *Walker) ScanPair(templateRoot, targetRoot string) ([]Pair, error) {
	templateRoot, err := filepath.Abs(templateRoot)
	if err != nil {
		return nil, err
	}
	targetRoot, err = filepath.Abs(targetRoot)
	if err != nil {
		return nil, err
	}

	var pairs []Pair
	err = filepath.Walk(templateRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(templateRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && w.matchesAny(w.excludes, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		pair := Pair{
			RelPath:       rel,
			GeneratedPath: path,
			TargetPath:    filepath.Join(targetRoot, filepath.FromSlash(rel)),
		}
		switch {
		case !w.matchesAny(w.includes, rel), w.matchesAny(w.excludes, rel):
			pair.Class = FileIgnored
		case fileExists(pair.TargetPath):
			pair.Class = FileMergeCandidate
		default:
			pair.Class = FileNew
		}
		pairs = append(pairs, pair)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not scan template tree %s: %w", templateRoot, err)
	}
	return pairs, nil
}

// CopyNew writes a FileNew pair's template file to its target location,
// creating parent directories as needed.
func CopyNew(pair Pair) error {
	data, err := os.ReadFile(pair.GeneratedPath)
	if err != nil {
		return fmt.Errorf("could not read template file %s: %w", pair.GeneratedPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(pair.TargetPath), 0o755); err != nil {
		return fmt.Errorf("could not create parent directory for %s: %w", pair.TargetPath, err)
	}
	if err := os.WriteFile(pair.TargetPath, data, 0o644); err != nil {
		return fmt.Errorf("could not write new file %s: %w", pair.TargetPath, err)
	}
	return nil
}

func (w *Walker) matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
