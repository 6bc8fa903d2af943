package merge

import (
	"fmt"

	"github.com/sharpsmith/sharpmerge-cli/app/csharp"
)

// -----------------------------------------------------------------------------
// [SESSION] Per-file decision queue & content mutation
// -----------------------------------------------------------------------------

// ItemKind classifies one pending merge item.
type ItemKind int

const (
	KindNewMethod ItemKind = iota
	KindNewProperty
	KindConflict
	KindPropertyConflict
)

func (k ItemKind) String() string {
	switch k {
	case KindNewMethod:
		return "new method"
	case KindNewProperty:
		return "new property"
	case KindConflict:
		return "conflict"
	case KindPropertyConflict:
		return "property conflict"
	default:
		return "unknown"
	}
}

// Item is one new or conflicting member awaiting a decision.
type Item struct {
	Kind     ItemKind
	Method   csharp.ParsedMethod   // generated side, for methods and conflicts
	Property csharp.ParsedProperty // generated side, for properties
	Existing string                // existing member's full text, for conflicts
}

// Title names the item for display and reporting.
func (it Item) Title() string {
	if it.Kind == KindNewProperty || it.Kind == KindPropertyConflict {
		return it.Property.Name
	}
	return it.Method.Name
}

// IsConflict reports whether the item needs a replace/keep decision rather
// than an accept/skip one.
func (it Item) IsConflict() bool {
	return it.Kind == KindConflict || it.Kind == KindPropertyConflict
}

// Decision is the externally supplied choice for one pending item.
type Decision int

const (
	DecisionAccept Decision = iota
	DecisionSkip
	DecisionReplace
	DecisionKeepExisting
	// DecisionQuit aborts the remaining queue for the current file without
	// reverting mutations already applied; the backup is the unit of
	// recovery, not member-level transactions.
	DecisionQuit
)

// Session walks one file's pending items in order, mutating an in-memory
// text buffer one member at a time. After every splice the buffer is
// re-parsed so the next insertion point is computed against fresh line
// numbers. The file on disk changes only in Commit.
type Session struct {
	GeneratedPath string
	ExistingPath  string
	BackupPath    string

	unit     *csharp.ParsedUnit // existing side, rebuilt after every mutation
	analysis *MergeAnalysis
	queue    []Item
	idx      int

	inserted int
	replaced int
	skipped  int
	quit     bool
}

// NewSession parses both texts, analyzes them, and builds the decision queue
// in the generated unit's source order: new and conflicting methods first,
// then new and conflicting properties.
func NewSession(generatedText, existingText, existingPath string) *Session {
	gen := csharp.Parse(generatedText)
	unit := csharp.Parse(existingText)
	analysis := Analyze(gen, unit)

	var queue []Item
	// Interleave new and changed methods back in the generated file's order.
	for _, gm := range gen.Methods {
		for _, nm := range analysis.NewMethods {
			if nm.Name == gm.Name {
				queue = append(queue, Item{Kind: KindNewMethod, Method: nm})
			}
		}
		for _, cm := range analysis.ChangedMethods {
			if cm.Generated.Name == gm.Name {
				queue = append(queue, Item{Kind: KindConflict, Method: cm.Generated, Existing: cm.Existing.FullText})
			}
		}
	}
	for _, gp := range gen.Properties {
		for _, np := range analysis.NewProperties {
			if np.Name == gp.Name {
				queue = append(queue, Item{Kind: KindNewProperty, Property: np})
			}
		}
		for _, cp := range analysis.ChangedProperties {
			if cp.Generated.Name == gp.Name {
				queue = append(queue, Item{Kind: KindPropertyConflict, Property: cp.Generated, Existing: cp.Existing.FullText})
			}
		}
	}

	return &Session{
		ExistingPath: existingPath,
		unit:         unit,
		analysis:     analysis,
		queue:        queue,
	}
}

// Analysis returns the classification the queue was built from.
func (s *Session) Analysis() *MergeAnalysis { return s.analysis }

// Text returns the current working buffer.
func (s *Session) Text() string { return s.unit.Source }

// Current returns the item awaiting a decision, if any.
func (s *Session) Current() (Item, bool) {
	if s.quit || s.idx >= len(s.queue) {
		return Item{}, false
	}
	return s.queue[s.idx], true
}

// Progress reports how many items have been decided out of the total.
func (s *Session) Progress() (done, total int) { return s.idx, len(s.queue) }

// Done reports whether no decisions remain.
func (s *Session) Done() bool {
	_, pending := s.Current()
	return !pending
}

// AppliedCount returns the number of mutations applied so far.
func (s *Session) AppliedCount() int { return s.inserted + s.replaced }

// Apply consumes the current item with the given decision. Accepted and
// replaced members mutate the buffer and trigger a re-parse; skip and
// keep-existing are no-ops. DecisionQuit marks every remaining item skipped.
func (s *Session) Apply(d Decision) error {
	item, ok := s.Current()
	if !ok {
		return fmt.Errorf("no pending item to decide")
	}

	if d == DecisionQuit {
		s.skipped += len(s.queue) - s.idx
		s.quit = true
		return nil
	}

	switch item.Kind {
	case KindNewMethod:
		switch d {
		case DecisionAccept:
			text, err := InsertMethod(s.unit, item.Method)
			if err != nil {
				return err
			}
			s.mutate(text)
			s.inserted++
		case DecisionSkip, DecisionKeepExisting:
			s.skipped++
		default:
			return fmt.Errorf("decision %d does not apply to a new method", d)
		}

	case KindNewProperty:
		switch d {
		case DecisionAccept:
			text, err := InsertProperty(s.unit, item.Property)
			if err != nil {
				return err
			}
			s.mutate(text)
			s.inserted++
		case DecisionSkip, DecisionKeepExisting:
			s.skipped++
		default:
			return fmt.Errorf("decision %d does not apply to a new property", d)
		}

	case KindConflict:
		switch d {
		case DecisionReplace, DecisionAccept:
			// Look the existing member up again in the fresh unit; its
			// recorded position may predate earlier mutations.
			em, found := s.unit.MethodByName(item.Method.Name)
			if !found {
				return fmt.Errorf("conflicting method %s no longer found in target", item.Method.Name)
			}
			s.mutate(ReplaceMethod(s.unit, em, item.Method.FullText))
			s.replaced++
		case DecisionSkip, DecisionKeepExisting:
			s.skipped++
		default:
			return fmt.Errorf("decision %d does not apply to a conflict", d)
		}

	case KindPropertyConflict:
		switch d {
		case DecisionReplace, DecisionAccept:
			ep, found := s.unit.PropertyByName(item.Property.Name)
			if !found {
				return fmt.Errorf("conflicting property %s no longer found in target", item.Property.Name)
			}
			s.mutate(ReplaceProperty(s.unit, ep, item.Property.FullText))
			s.replaced++
		case DecisionSkip, DecisionKeepExisting:
			s.skipped++
		default:
			return fmt.Errorf("decision %d does not apply to a conflict", d)
		}
	}

	s.idx++
	return nil
}

// mutate swaps in the new buffer and immediately re-parses it.
func (s *Session) mutate(text string) {
	s.unit = csharp.Parse(text)
}
