package dockerbuild

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Runner executes or displays commands of the container tool.
type Runner interface {
	// Run runs the command to completion.
	Run(ctx context.Context, cmd *Command) error
}

const dryMarker = "DRY:"

// dryRunner prints commands instead of running them.
type dryRunner struct {
	out    io.Writer
	marker *color.Color
}

func newDryRunner(out io.Writer) *dryRunner {
	return &dryRunner{out: out, marker: color.New(color.FgYellow)}
}

func (r *dryRunner) Run(_ context.Context, cmd *Command) error {
	_, err := fmt.Fprintf(r.out, "%s %s\n", r.marker.Sprint(dryMarker), cmd)
	return errors.WithStack(err)
}

// execRunner runs commands with the output attached to its writers. The
// tool inherits the whole environment of the process.
type execRunner struct {
	stdout io.Writer
	stderr io.Writer
}

func newExecRunner() *execRunner {
	return &execRunner{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func (r *execRunner) Run(ctx context.Context, cmd *Command) error {
	c := exec.CommandContext(ctx, cmd.Bin, cmd.Args...)
	c.Stdout = r.stdout
	c.Stderr = r.stderr
	if err := c.Run(); err != nil {
		return errors.Wrapf(err, "run %s", cmd.Bin)
	}
	return nil
}

// NewRunner returns the runner matching the configuration: one that only
// prints to out in dry-run mode, and one that executes otherwise.
func NewRunner(config *Config, out io.Writer) Runner {
	if config.DryRun {
		return newDryRunner(out)
	}
	return newExecRunner()
}

// ExitCode maps the error of a command to a process exit status the way a
// shell does: the tool's own status when it ran, 128+signal when it was
// killed, 127 when it could not be started.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
		return 1
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return 127
	}
	return 1
}
