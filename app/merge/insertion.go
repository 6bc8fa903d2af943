package merge

import (
	"fmt"
	"strings"

	"github.com/sharpsmith/sharpmerge-cli/app/csharp"
)

// -----------------------------------------------------------------------------
// [INSERTION] Insertion-point planning & text splicing
// -----------------------------------------------------------------------------
//
// All offsets here are computed against the unit's own Source text. Callers
// must re-parse after every single splice before planning the next one;
// offsets taken against stale text are a correctness bug, not a performance
// concession.

// memberIndent is the class member indentation of the supported grammar.
const memberIndent = "    "

// FindMethodInsertionPoint returns the character offset at which a new method
// should be spliced into the unit's source. New methods always append after
// the last existing method (past any blank lines that follow it) and before
// the type's closing brace, never interleaved, so diffs stay reviewable.
func FindMethodInsertionPoint(unit *csharp.ParsedUnit) (int, error) {
	src := unit.Source
	offsets := csharp.LineStartOffsets(src)

	if len(unit.Methods) == 0 {
		_, close, ok := unit.TypeBodySpan()
		if !ok {
			return 0, fmt.Errorf("could not locate class body in %s", unit.TypeName)
		}
		return offsets[csharp.LineIndexAt(offsets, close)], nil
	}

	last := unit.Methods[len(unit.Methods)-1]
	pos := startOfLineAfter(src, offsets, last.EndLine)
	return skipBlankLines(src, pos), nil
}

// FindPropertyInsertionPoint returns the offset for a new property: after the
// last existing property when any exist, else immediately before the first
// method's declaration (including its attributes), else before the type's
// closing brace.
func FindPropertyInsertionPoint(unit *csharp.ParsedUnit) (int, error) {
	src := unit.Source
	offsets := csharp.LineStartOffsets(src)

	if len(unit.Properties) > 0 {
		last := unit.Properties[len(unit.Properties)-1]
		return startOfLineAfter(src, offsets, last.StartLine), nil
	}
	if len(unit.Methods) > 0 {
		first := unit.Methods[0]
		return offsets[first.FullStartLine()-1], nil
	}
	_, close, ok := unit.TypeBodySpan()
	if !ok {
		return 0, fmt.Errorf("could not locate class body in %s", unit.TypeName)
	}
	return offsets[csharp.LineIndexAt(offsets, close)], nil
}

// InsertMethod splices the generated method's full text into the unit's
// source, wrapped with a blank line before and one newline after.
func InsertMethod(unit *csharp.ParsedUnit, method csharp.ParsedMethod) (string, error) {
	pos, err := FindMethodInsertionPoint(unit)
	if err != nil {
		return "", err
	}
	block := "\n" + indentBlock(strings.TrimRight(method.FullText, "\n"), memberIndent) + "\n"
	return unit.Source[:pos] + block + unit.Source[pos:], nil
}

// InsertProperty splices the generated property's full text into the unit's
// source at the class member indentation, wrapped with one newline before and
// after. The leading newline collapses when the insertion point already sits
// at a line start.
func InsertProperty(unit *csharp.ParsedUnit, prop csharp.ParsedProperty) (string, error) {
	pos, err := FindPropertyInsertionPoint(unit)
	if err != nil {
		return "", err
	}
	block := indentBlock(strings.TrimRight(prop.FullText, "\n"), memberIndent) + "\n"
	if pos > 0 && unit.Source[pos-1] != '\n' {
		block = "\n" + block
	}
	return unit.Source[:pos] + block + unit.Source[pos:], nil
}

// ReplaceMethodSpan returns the [before, after) character span occupied by
// the existing method, including its attributes and leading comments.
func ReplaceMethodSpan(unit *csharp.ParsedUnit, existing csharp.ParsedMethod) (int, int) {
	offsets := csharp.LineStartOffsets(unit.Source)
	before := offsets[existing.FullStartLine()-1]
	after := endOfLine(unit.Source, offsets, existing.EndLine)
	return before, after
}

// ReplaceMethod substitutes the existing method's full span with the
// replacement text, leaving every other byte untouched.
func ReplaceMethod(unit *csharp.ParsedUnit, existing csharp.ParsedMethod, replacement string) string {
	before, after := ReplaceMethodSpan(unit, existing)
	body := indentBlock(strings.TrimRight(replacement, "\n"), memberIndent)
	return unit.Source[:before] + body + unit.Source[after:]
}

// ReplacePropertySpan returns the [before, after) character span occupied by
// the existing property, including its attributes.
func ReplacePropertySpan(unit *csharp.ParsedUnit, existing csharp.ParsedProperty) (int, int) {
	offsets := csharp.LineStartOffsets(unit.Source)
	before := offsets[existing.FullStartLine()-1]
	after := endOfLine(unit.Source, offsets, existing.StartLine)
	return before, after
}

// ReplaceProperty substitutes the existing property's full span with the
// replacement text, leaving every other byte untouched.
func ReplaceProperty(unit *csharp.ParsedUnit, existing csharp.ParsedProperty, replacement string) string {
	before, after := ReplacePropertySpan(unit, existing)
	body := indentBlock(strings.TrimRight(replacement, "\n"), memberIndent)
	return unit.Source[:before] + body + unit.Source[after:]
}

// startOfLineAfter returns the offset of the first character of the line
// following the given 1-indexed line, or len(src) at end of text.
func startOfLineAfter(src string, offsets []int, line int) int {
	if line < len(offsets) {
		return offsets[line]
	}
	return len(src)
}

// endOfLine returns the offset just past the last character of the given
// 1-indexed line, excluding its newline.
func endOfLine(src string, offsets []int, line int) int {
	if line < len(offsets) {
		return offsets[line] - 1
	}
	return len(src)
}

// skipBlankLines advances pos, assumed to sit at a line start, past any
// blank lines.
func skipBlankLines(src string, pos int) int {
	for pos < len(src) {
		end := strings.IndexByte(src[pos:], '\n')
		if end < 0 {
			break
		}
		if strings.TrimSpace(src[pos:pos+end]) != "" {
			break
		}
		pos += end + 1
	}
	return pos
}

// indentBlock applies the given indentation to every non-blank line that does
// not already start with whitespace. Generated members normally arrive with
// their template indentation intact; this only fixes up flush-left snippets.
func indentBlock(block, indent string) string {
	lines := strings.Split(block, "\n")
	for i, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		if ln[0] == ' ' || ln[0] == '\t' {
			continue
		}
		lines[i] = indent + ln
	}
	return strings.Join(lines, "\n")
}
