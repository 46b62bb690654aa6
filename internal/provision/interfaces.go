package provision

import (
	"context"
	"io"
)

// Execer runs external commands on behalf of provisioning steps.
// This wraps os/exec to allow for testing.
//
// In production, this is satisfied by the implementation from NewExecer.
// In tests, this is satisfied by mock implementations.
type Execer interface {
	// Run executes a command, writing its combined stdout and stderr to
	// output, and returns an error on non-zero exit.
	Run(ctx context.Context, output io.Writer, name string, args ...string) error
}
