package csharp

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// [PARSER] Regex-driven declaration extraction
// -----------------------------------------------------------------------------
//
// The parser deliberately stays a bounded pattern matcher over a constrained
// grammar subset instead of building a syntax tree. Anything it does not
// recognize (expression-bodied members, accessor bodies with logic, multi-line
// parameter lists) fails closed: the construct is simply not discovered, so
// the merge engine can never rewrite it.

var (
	namespaceRegex = regexp.MustCompile(`(?m)^\s*namespace\s+([A-Za-z_][A-Za-z0-9_.]*)`)
	classRegex     = regexp.MustCompile(`(?m)^\s*(?:(?:public|internal|protected|private|sealed|abstract|static|partial)\s+)*class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	usingRegex     = regexp.MustCompile(`(?m)^\s*using\s+(?:static\s+)?([A-Za-z_][A-Za-z0-9_.]*)\s*;`)

	// Method header: accessibility, optional modifiers, return type, a name
	// starting with an uppercase letter, a single-line parameter list, and
	// optionally the opening brace on the same line.
	methodHeaderRegex = regexp.MustCompile(`^\s*(public|private|protected internal|private protected|protected|internal)\s+((?:(?:static|async|virtual|override|sealed|new|partial)\s+)*)([A-Za-z_][A-Za-z0-9_<>\[\],\.\? ]*?)\s+([A-Z][A-Za-z0-9_]*)\s*\(([^)]*)\)\s*(\{.*)?\s*$`)

	// Auto-property header: same modifier prefix, a type, a name, and an
	// accessor block limited to { get; } / { get; set; } (init and
	// restricted-visibility setters tolerated), optionally an initializer.
	propertyRegex = regexp.MustCompile(`^\s*(public|private|protected internal|private protected|protected|internal)\s+((?:(?:static|virtual|override|new|required)\s+)*)([A-Za-z_][A-Za-z0-9_<>\[\],\.\?]*)\s+([A-Z][A-Za-z0-9_]*)\s*\{\s*get\s*;(?:\s*(?:private\s+|protected\s+|internal\s+)?(set|init)\s*;)?\s*\}\s*(=.*;)?\s*$`)

	attributeLineRegex = regexp.MustCompile(`^\s*\[.*\]\s*$`)
	commentLineRegex   = regexp.MustCompile(`^\s*(//|/\*|\*)`)
)

// methodDenyList holds framework helper names that show up as bare calls in
// generated controller bodies and would otherwise pattern-match a declaration
// header.
var methodDenyList = map[string]bool{
	"Ok":               true,
	"NotFound":         true,
	"BadRequest":       true,
	"NoContent":        true,
	"Unauthorized":     true,
	"Forbid":           true,
	"Problem":          true,
	"StatusCode":       true,
	"CreatedAtAction":  true,
	"CreatedAtRoute":   true,
	"Redirect":         true,
	"RedirectToAction": true,
}

// ParseFile reads the file at path and parses it. The only error condition is
// an unreadable file; in-memory parsing itself never fails.
func ParseFile(path string) (*ParsedUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read source file %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Parse builds a ParsedUnit from raw source text. The result always reflects
// exactly the text it was given; callers re-invoke Parse after every text
// mutation instead of patching an existing unit.
func Parse(text string) *ParsedUnit {
	unit := &ParsedUnit{Source: text}

	if m := namespaceRegex.FindStringSubmatch(text); m != nil {
		unit.Namespace = m[1]
	}
	if m := classRegex.FindStringSubmatch(text); m != nil {
		unit.TypeName = m[1]
	}
	for _, m := range usingRegex.FindAllStringSubmatch(text, -1) {
		unit.Usings = append(unit.Usings, m[1])
	}

	lines := strings.Split(text, "\n")
	starts := LineStartOffsets(text)

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if pm := propertyRegex.FindStringSubmatch(line); pm != nil {
			startIdx, attrs := memberStart(lines, i)
			unit.Properties = append(unit.Properties, ParsedProperty{
				Name:          pm[4],
				Type:          strings.TrimSpace(pm[3]),
				Attributes:    attrs,
				Accessibility: pm[1],
				ReadOnly:      pm[5] == "",
				HasGetter:     true,
				HasSetter:     pm[5] != "",
				FullText:      strings.Join(lines[startIdx:i+1], "\n"),
				StartLine:     i + 1,
			})
			continue
		}

		mm := methodHeaderRegex.FindStringSubmatch(line)
		if mm == nil {
			continue
		}
		if strings.Contains(line, "=>") {
			continue // expression-bodied, unsupported
		}
		name := mm[4]
		if methodDenyList[name] {
			continue
		}
		if prev := previousNonBlankLine(lines, i); prev >= 0 {
			t := strings.TrimSpace(lines[prev])
			if t == "return" || strings.HasPrefix(t, "return ") {
				continue // return-statement body that happens to look like a header
			}
		}

		// Locate the member's opening brace: same line, or the next
		// non-blank line when the brace sits alone.
		braceLine := i
		bracePos := strings.Index(line, "{")
		if bracePos < 0 {
			j := i + 1
			for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
				j++
			}
			if j >= len(lines) || !strings.HasPrefix(strings.TrimSpace(lines[j]), "{") {
				continue
			}
			braceLine = j
			bracePos = strings.Index(lines[j], "{")
		}

		closePos, ok := MatchBrace(text, starts[braceLine]+bracePos)
		if !ok {
			continue // unbalanced braces; leave the member undiscovered
		}
		endIdx := LineIndexAt(starts, closePos)

		startIdx, attrs := memberStart(lines, i)
		mods := mm[2]
		returnType := strings.TrimSpace(mm[3])
		params := mm[5]

		unit.Methods = append(unit.Methods, ParsedMethod{
			Name:          name,
			Signature:     strings.TrimSpace(strings.TrimSuffix(strings.TrimRight(line, " \t"), "{")),
			Normalized:    NormalizeSignature(returnType + " " + name + "(" + params + ")"),
			StartLine:     i + 1,
			EndLine:       endIdx + 1,
			FullText:      strings.Join(lines[startIdx:endIdx+1], "\n"),
			Attributes:    attrs,
			Accessibility: mm[1],
			IsAsync:       strings.Contains(mods, "async"),
			IsStatic:      strings.Contains(mods, "static"),
			ReturnType:    returnType,
			Parameters:    params,
		})

		// Skip the body so braces and statements inside it are never
		// re-scanned as declarations.
		i = endIdx
	}

	return unit
}

// TypeBodySpan locates the declared type's opening brace and its matching
// closing brace in u.Source. ok is false when no class declaration is found
// or the braces are unbalanced.
func (u *ParsedUnit) TypeBodySpan() (open, close int, ok bool) {
	loc := classRegex.FindStringIndex(u.Source)
	if loc == nil {
		return 0, 0, false
	}
	rel := strings.Index(u.Source[loc[1]:], "{")
	if rel < 0 {
		return 0, 0, false
	}
	open = loc[1] + rel
	close, ok = MatchBrace(u.Source, open)
	return open, close, ok
}

// memberStart walks upward from the header line collecting attribute lines,
// skipping blanks and comments, until ordinary code is found. It returns the
// 0-based line index where the member's full text starts and the attributes
// in top-down order.
func memberStart(lines []string, headerIdx int) (int, []string) {
	start := headerIdx
	var attrs []string
	for i := headerIdx - 1; i >= 0; i-- {
		line := lines[i]
		switch {
		case attributeLineRegex.MatchString(line):
			start = i
			attrs = append(attrs, strings.TrimSpace(line))
		case strings.TrimSpace(line) == "":
			// keep walking; a blank between attributes does not end them
		case commentLineRegex.MatchString(line):
			start = i
		default:
			reverse(attrs)
			return start, attrs
		}
	}
	reverse(attrs)
	return start, attrs
}

func reverse(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}

// previousNonBlankLine returns the index of the closest non-blank line above
// idx, or -1 when there is none.
func previousNonBlankLine(lines []string, idx int) int {
	for i := idx - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

// LineStartOffsets returns the byte offset at which each line begins.
// Line i (0-based) spans [offsets[i], offsets[i+1]) including its newline.
func LineStartOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// LineIndexAt returns the 0-based line index containing the byte offset.
func LineIndexAt(offsets []int, pos int) int {
	return sort.Search(len(offsets), func(i int) bool { return offsets[i] > pos }) - 1
}
