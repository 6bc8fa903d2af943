package cli

import (
	"fmt"
	"strings"
)

// CommandRegistryChecker reports whether a command name exists. Keeping this
// an interface avoids a dependency cycle between cli and the command layer.
type CommandRegistryChecker interface {
	CommandExists(name string) bool
}

// CommandArgs holds structured information parsed from the raw command line.
type CommandArgs struct {
	RawArgs          []string
	CommandName      string            // e.g. "merge", "config set"
	Variables        []string          // positional arguments after the command
	Flags            map[string]string // value flags: --out=./dir, --out ./dir
	BoolFlags        map[string]bool   // presence flags: --batch, -v
	HelpRequested    bool
	VersionRequested bool
	Errors           []error
}

// Flag returns a value flag by long name, falling back to a short alias.
func (a CommandArgs) Flag(long, short string) (string, bool) {
	if v, ok := a.Flags[long]; ok {
		return v, true
	}
	if short != "" {
		if v, ok := a.Flags[short]; ok {
			return v, true
		}
	}
	return "", false
}

// Bool returns a presence flag by long name, falling back to a short alias.
func (a CommandArgs) Bool(long, short string) bool {
	if a.BoolFlags[long] {
		return true
	}
	return short != "" && a.BoolFlags[short]
}

// Verbose and debug toggles are process-wide; every package checks them
// before printing informational or diagnostic output.
var (
	verboseEnabled bool
	debugEnabled   bool
)

// SetVerboseEnabled enables or disables verbose informational output.
func SetVerboseEnabled(on bool) { verboseEnabled = on }

// IsVerboseEnabled reports whether verbose mode is enabled.
func IsVerboseEnabled() bool { return verboseEnabled }

// SetDebugEnabled enables or disables debug logging.
func SetDebugEnabled(on bool) { debugEnabled = on }

// IsDebugEnabled reports whether debug logging is enabled.
func IsDebugEnabled() bool { return debugEnabled }

// ParseCommandLineArgs parses rawArgs against the registry. The first one or
// two non-flag tokens are tried as a command name (two-word commands like
// "config set" win over one-word ones); everything else becomes positional
// variables and flags.
func ParseCommandLineArgs(rawArgs []string, registry CommandRegistryChecker) CommandArgs {
	parsed := CommandArgs{
		RawArgs:   rawArgs,
		Variables: []string{},
		Flags:     map[string]string{},
		BoolFlags: map[string]bool{},
		Errors:    []error{},
	}

	// Global flags are recognized anywhere on the line.
	for _, arg := range rawArgs {
		switch arg {
		case "--help", "-h":
			parsed.HelpRequested = true
		case "--version":
			parsed.VersionRequested = true
		}
	}

	rest := consumeCommandName(rawArgs, registry, &parsed)

	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "--version":
			// already handled globally

		case strings.HasPrefix(arg, "--"):
			name := strings.TrimPrefix(arg, "--")
			if eq := strings.Index(name, "="); eq >= 0 {
				setValueFlag(&parsed, name[:eq], name[eq+1:])
			} else if i+1 < len(rest) && !strings.HasPrefix(rest[i+1], "-") && flagTakesValue(name) {
				setValueFlag(&parsed, name, rest[i+1])
				i++
			} else {
				setBoolFlag(&parsed, name)
			}

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			name := strings.TrimPrefix(arg, "-")
			if len(name) != 1 {
				parsed.Errors = append(parsed.Errors, fmt.Errorf("invalid flag format: %s", arg))
				continue
			}
			setBoolFlag(&parsed, name)

		default:
			parsed.Variables = append(parsed.Variables, arg)
		}
	}

	return parsed
}

// valueFlagNames lists the flags that consume the following argument when
// written without '='. Everything else is treated as a boolean.
var valueFlagNames = map[string]bool{
	"include": true,
	"exclude": true,
	"out":     true,
}

func flagTakesValue(name string) bool { return valueFlagNames[name] }

// consumeCommandName resolves the command name from the first one or two
// non-flag tokens and returns the remaining arguments.
func consumeCommandName(args []string, registry CommandRegistryChecker, parsed *CommandArgs) []string {
	first, second := -1, -1
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if first == -1 {
			first = i
		} else {
			second = i
			break
		}
	}
	if first == -1 {
		return args
	}

	if second != -1 {
		twoWord := args[first] + " " + args[second]
		if registry.CommandExists(twoWord) {
			parsed.CommandName = twoWord
			return without(args, first, second)
		}
	}
	if registry.CommandExists(args[first]) {
		parsed.CommandName = args[first]
		return without(args, first, -1)
	}
	return args
}

func without(args []string, skip1, skip2 int) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if i == skip1 || i == skip2 {
			continue
		}
		out = append(out, arg)
	}
	return out
}

func setValueFlag(parsed *CommandArgs, name, value string) {
	if _, exists := parsed.Flags[name]; exists {
		parsed.Errors = append(parsed.Errors, fmt.Errorf("flag provided more than once: --%s", name))
	}
	parsed.Flags[name] = value
}

func setBoolFlag(parsed *CommandArgs, name string) {
	if parsed.BoolFlags[name] {
		parsed.Errors = append(parsed.Errors, fmt.Errorf("flag provided more than once: --%s", name))
	}
	parsed.BoolFlags[name] = true
}
