package csharp

// -----------------------------------------------------------------------------
// [SCANNER] Lexical-state-aware brace matching
// -----------------------------------------------------------------------------

// lexState tracks which lexical region the scanner is currently inside.
// The states are mutually exclusive; transitions only happen on the
// characters that open or close a region.
type lexState int

const (
	stateCode lexState = iota
	stateString
	stateVerbatimString
	stateInterpolated
	stateCharLiteral
	stateLineComment
	stateBlockComment
)

// MatchBrace returns the index of the closing brace that matches the opening
// brace at openPos, skipping braces that occur inside string literals, char
// literals, interpolation holes and comments. The second return value is
// false when text[openPos] is not '{' or when the text ends before the
// matching brace is found (unbalanced input). Callers should treat a false
// result as "extent unknown" and leave the surrounding declaration alone
// rather than failing the whole file.
func MatchBrace(text string, openPos int) (int, bool) {
	if openPos < 0 || openPos >= len(text) || text[openPos] != '{' {
		return 0, false
	}

	depth := 1
	state := stateCode
	// Interpolated strings get their own brace counter so `$"{expr}"`
	// never perturbs the outer depth. Verbatim interpolated strings
	// ($@"..." or @$"...") use doubled quotes as the only quote escape.
	// holeString tracks an ordinary string literal nested inside an
	// interpolation hole, whose braces and quotes must not leak out.
	interpDepth := 0
	interpVerbatim := false
	holeString := false

	for i := openPos + 1; i < len(text); i++ {
		c := text[i]

		switch state {
		case stateCode:
			switch c {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i, true
				}
			case '"':
				state = stateString
			case '\'':
				state = stateCharLiteral
			case '@':
				if i+1 < len(text) && text[i+1] == '"' {
					state = stateVerbatimString
					i++
				} else if i+2 < len(text) && text[i+1] == '$' && text[i+2] == '"' {
					state = stateInterpolated
					interpVerbatim = true
					interpDepth = 0
					i += 2
				}
			case '$':
				if i+1 < len(text) && text[i+1] == '"' {
					state = stateInterpolated
					interpVerbatim = false
					interpDepth = 0
					i++
				} else if i+2 < len(text) && text[i+1] == '@' && text[i+2] == '"' {
					state = stateInterpolated
					interpVerbatim = true
					interpDepth = 0
					i += 2
				}
			case '/':
				if i+1 < len(text) {
					switch text[i+1] {
					case '/':
						state = stateLineComment
						i++
					case '*':
						state = stateBlockComment
						i++
					}
				}
			}

		case stateString:
			if c == '\\' {
				i++ // skip the escaped character
			} else if c == '"' {
				state = stateCode
			}

		case stateVerbatimString:
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					i++ // doubled quote, stay inside
				} else {
					state = stateCode
				}
			}

		case stateInterpolated:
			if holeString {
				if c == '\\' {
					i++
				} else if c == '"' {
					holeString = false
				}
				continue
			}
			switch c {
			case '\\':
				if !interpVerbatim {
					i++
				}
			case '{':
				if i+1 < len(text) && text[i+1] == '{' {
					i++ // escaped literal brace
				} else {
					interpDepth++
				}
			case '}':
				if interpDepth > 0 {
					interpDepth--
				} else if i+1 < len(text) && text[i+1] == '}' {
					i++ // escaped literal brace
				}
			case '"':
				if interpVerbatim && i+1 < len(text) && text[i+1] == '"' {
					i++ // doubled quote, stay inside
				} else if interpDepth > 0 {
					holeString = true
				} else {
					state = stateCode
				}
			}

		case stateCharLiteral:
			if c == '\\' {
				i++
			} else if c == '\'' || c == '\n' {
				// A newline inside a char literal means malformed input;
				// bail back to code so one bad literal can't swallow the file.
				state = stateCode
			}

		case stateLineComment:
			if c == '\n' {
				state = stateCode
			}

		case stateBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				state = stateCode
				i++
			}
		}
	}

	return 0, false
}
