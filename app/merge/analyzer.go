package merge

import (
	"fmt"

	"github.com/sharpsmith/sharpmerge-cli/app/csharp"
)

// -----------------------------------------------------------------------------
// [ANALYZER] Name-keyed diff of two parsed units
// -----------------------------------------------------------------------------

// ChangedMethod pairs the generated and existing declarations of a method
// whose normalized signatures differ.
type ChangedMethod struct {
	Generated csharp.ParsedMethod
	Existing  csharp.ParsedMethod
}

// ChangedProperty pairs the generated and existing declarations of a property
// whose declared types differ.
type ChangedProperty struct {
	Generated csharp.ParsedProperty
	Existing  csharp.ParsedProperty
}

// MergeAnalysis is the classification of every member of the generated and
// existing units. It is built once per Analyze call and not mutated after.
//
// The four method partitions are disjoint and, by name, cover the union of
// both inputs' method lists. Properties deliberately have no removed
// partition: a property present only in the existing file is left in place
// without being reported, matching the original tool's behavior.
type MergeAnalysis struct {
	NewMethods       []csharp.ParsedMethod
	ChangedMethods   []ChangedMethod
	RemovedMethods   []csharp.ParsedMethod // hand-written, preserved, reported
	UnchangedMethods []csharp.ParsedMethod

	NewProperties     []csharp.ParsedProperty
	ChangedProperties []ChangedProperty

	Conflicts []string
}

// HasPendingWork reports whether the analysis found anything that could
// result in a mutation.
func (a *MergeAnalysis) HasPendingWork() bool {
	return len(a.NewMethods) > 0 || len(a.ChangedMethods) > 0 ||
		len(a.NewProperties) > 0 || len(a.ChangedProperties) > 0
}

// Analyze classifies every method and property of the generated unit against
// the existing unit by exact name. Comparison is whitespace insensitive and
// covers both the signature and the body, so a regenerated body with an
// identical header still surfaces as changed while pure reformatting never
// does. Properties compare declared type only. Partition order follows the
// source order of the inputs, never map iteration order.
func Analyze(generated, existing *csharp.ParsedUnit) *MergeAnalysis {
	a := &MergeAnalysis{}

	for _, gm := range generated.Methods {
		em, found := existing.MethodByName(gm.Name)
		switch {
		case !found:
			a.NewMethods = append(a.NewMethods, gm)
		case gm.Normalized != em.Normalized:
			a.ChangedMethods = append(a.ChangedMethods, ChangedMethod{Generated: gm, Existing: em})
			a.Conflicts = append(a.Conflicts,
				fmt.Sprintf("method %s: signature differs between generated and existing code", gm.Name))
		case csharp.NormalizeSignature(gm.FullText) != csharp.NormalizeSignature(em.FullText):
			a.ChangedMethods = append(a.ChangedMethods, ChangedMethod{Generated: gm, Existing: em})
			a.Conflicts = append(a.Conflicts,
				fmt.Sprintf("method %s: body differs between generated and existing code", gm.Name))
		default:
			a.UnchangedMethods = append(a.UnchangedMethods, gm)
		}
	}

	// Methods only present in the existing file are hand-written additions.
	// They are reported so a human knows they were preserved; the engine
	// never deletes them.
	for _, em := range existing.Methods {
		if _, found := generated.MethodByName(em.Name); !found {
			a.RemovedMethods = append(a.RemovedMethods, em)
		}
	}

	for _, gp := range generated.Properties {
		ep, found := existing.PropertyByName(gp.Name)
		switch {
		case !found:
			a.NewProperties = append(a.NewProperties, gp)
		case gp.Type != ep.Type:
			a.ChangedProperties = append(a.ChangedProperties, ChangedProperty{Generated: gp, Existing: ep})
			a.Conflicts = append(a.Conflicts,
				fmt.Sprintf("property %s: declared type differs (%s vs %s)", gp.Name, ep.Type, gp.Type))
		}
	}

	return a
}
