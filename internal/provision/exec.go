package provision

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// execRunner is the production Execer backed by os/exec.
type execRunner struct{}

// NewExecer returns an Execer that runs commands on the local machine.
func NewExecer() Execer {
	return execRunner{}
}

// Run executes the command with combined output directed at output.
//
// There is deliberately no timeout here: package installs and clones can
// legitimately take a long time, and the procedure's contract is to wait.
// Callers that need cancellation pass it through ctx.
func (execRunner) Run(ctx context.Context, output io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = output
	cmd.Stderr = output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}

	return nil
}
