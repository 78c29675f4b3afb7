// Package executor runs a vetted script through a shell interpreter with
// the invoking process's terminal streams attached, so interactive scripts
// behave exactly as if the user had piped them to the shell directly.
package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/user/vetsh/internal/logging"
)

// DefaultShell is the interpreter used when the config does not name one.
const DefaultShell = "bash"

// Runner executes script text through a shell. The stream fields default to
// the process's own streams and can be replaced in tests.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Runner attached to the process's terminal streams.
func New() *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the script text verbatim via `<shell> -c <script>`. The
// returned error carries the script's own exit status when it ran but
// failed; use ExitCode to recover it.
func (r *Runner) Run(ctx context.Context, shell, script string) error {
	if shell == "" {
		shell = DefaultShell
	}

	logging.L().Debugw("executing script", "shell", shell, "bytes", len(script))

	cmd := exec.CommandContext(ctx, shell, "-c", script)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	return cmd.Run()
}

// ExitCode maps a Run error to a process exit code: 0 on nil, the script's
// status when it exited non-zero, -1 for failures to launch at all.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
