package provision

import (
	"context"
	"io"
	"strings"
	"sync"
)

// mockExecer is a mock implementation of the Execer interface for testing.
type mockExecer struct {
	mu sync.Mutex

	// Configurable behavior. Called with the full command line
	// ("dnf install -y git"); nil means every command succeeds silently.
	runFunc func(cmdline string, output io.Writer) error

	// Call tracking
	calls []string
}

func (m *mockExecer) Run(ctx context.Context, output io.Writer, name string, args ...string) error {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	m.mu.Lock()
	m.calls = append(m.calls, cmdline)
	fn := m.runFunc
	m.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(cmdline, output)
}

func (m *mockExecer) callLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
