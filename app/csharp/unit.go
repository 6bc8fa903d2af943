package csharp

import "strings"

// -----------------------------------------------------------------------------
// [MODEL] Parsed declaration model
// -----------------------------------------------------------------------------

// MemberSignature is a whitespace-stripped rendering of a declaration's shape.
// It exists only for equality comparison; insertion always uses the member's
// full source text, never the signature.
type MemberSignature string

// NormalizeSignature strips every whitespace character from sig so that
// reformatting alone never registers as a change.
func NormalizeSignature(sig string) MemberSignature {
	var b strings.Builder
	b.Grow(len(sig))
	for _, r := range sig {
		switch r {
		case ' ', '\t', '\r', '\n':
		default:
			b.WriteRune(r)
		}
	}
	return MemberSignature(b.String())
}

// ParsedMethod describes one method declaration found in a source file.
// StartLine/EndLine are 1-indexed and inclusive; FullText spans from the
// first attribute line (if any) through the closing brace line.
type ParsedMethod struct {
	Name          string
	Signature     string          // header text as written, single line
	Normalized    MemberSignature // whitespace-stripped Signature
	StartLine     int             // header line
	EndLine       int             // closing brace line
	FullText      string
	Attributes    []string
	Accessibility string
	IsAsync       bool
	IsStatic      bool
	ReturnType    string
	Parameters    string // raw parameter-list text between the parentheses
}

// ParsedProperty describes one auto-property declaration. Only auto-properties
// are modeled ({ get; }, { get; set; }, optionally with an initializer);
// expression-bodied and full-bodied accessors are never discovered, which is
// what keeps the engine from touching them.
type ParsedProperty struct {
	Name          string
	Type          string
	Attributes    []string
	Accessibility string
	ReadOnly      bool // getter without setter
	HasGetter     bool
	HasSetter     bool
	FullText      string
	StartLine     int
}

// ParsedUnit is the semantic model of one source file: the enclosing type,
// its members in source order, and the exact text the model was derived from.
// A unit is never mutated in place; any change to the text produces a new
// unit via Parse, which is how line numbers stay correct across insertions.
type ParsedUnit struct {
	TypeName   string
	Namespace  string
	Usings     []string
	Methods    []ParsedMethod
	Properties []ParsedProperty
	Source     string
}

// FullStartLine returns the 1-indexed line where the method's full text
// begins, which is above StartLine whenever attributes or leading comments
// were collected.
func (m ParsedMethod) FullStartLine() int {
	return m.EndLine - strings.Count(m.FullText, "\n")
}

// FullStartLine returns the 1-indexed line where the property's full text
// begins, including its attributes.
func (p ParsedProperty) FullStartLine() int {
	return p.StartLine - strings.Count(p.FullText, "\n")
}

// MethodByName returns the method with the given name, if present.
func (u *ParsedUnit) MethodByName(name string) (ParsedMethod, bool) {
	for _, m := range u.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return ParsedMethod{}, false
}

// PropertyByName returns the property with the given name, if present.
func (u *ParsedUnit) PropertyByName(name string) (ParsedProperty, bool) {
	for _, p := range u.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return ParsedProperty{}, false
}
