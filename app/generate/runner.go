package generate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// [GENERATE] External generator invocation
// -----------------------------------------------------------------------------

// Runner shells out to the user-configured code generator. The merge engine
// never depends on this package; the generator is an ordinary external
// collaborator whose output lands in a template tree that `merge` then scans.
type Runner struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// DefaultTimeout bounds a single generator invocation.
const DefaultTimeout = 5 * time.Minute

// NewRunner builds a Runner for the configured command line.
func NewRunner(command string, args []string) *Runner {
	return &Runner{Command: command, Args: args, Timeout: DefaultTimeout}
}

// Run invokes the generator with the given description appended to its
// configured arguments, working inside outDir. It returns the generator's
// combined textual output; a non-zero exit or timeout is an error carrying
// whatever output was produced.
func (r *Runner) Run(ctx context.Context, description, outDir string) (string, error) {
	if strings.TrimSpace(r.Command) == "" {
		return "", fmt.Errorf("no generator command configured; set one with `sharpmerge config set generator <command>`")
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	args := append(append([]string{}, r.Args...), description)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Dir = outDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return out.String(), fmt.Errorf("generator timed out after %s", r.Timeout)
	}
	if err != nil {
		return out.String(), fmt.Errorf("generator failed: %w", err)
	}
	return out.String(), nil
}
