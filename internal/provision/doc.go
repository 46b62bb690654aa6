// Package provision implements the boot-time provisioning procedure.
//
// The procedure is a fixed, ordered list of steps: install OS packages,
// bootstrap and upgrade pip, install the application's Python library,
// clone the application repository, and hand ownership of the clone to the
// target account. Steps run strictly in order with a first-failure-aborts
// policy; the single exception is the ensurepip bootstrap, whose failure is
// tolerated because the pip module usually ships with the python3 package
// already.
//
// Output Handling:
//
// The Runner tees the combined stdout/stderr of every step, plus its own
// progress lines, to both the process stdout and the configured log file.
// On success the log ends with config.CompletionMessage; external tooling
// greps for that string.
//
// Error Handling:
//
// There are no retries and no rollback. A failed run leaves the machine in
// whatever state it reached; the Report records which step failed and which
// steps never ran.
//
// Consumer-Side Interfaces:
//
// Steps execute external commands through the Execer interface. In
// production this is the os/exec based implementation from NewExecer; tests
// substitute mocks. See internal/cloudinit for the second consumer of
// steps, which renders them as a user-data shell script instead of
// executing them.
package provision
