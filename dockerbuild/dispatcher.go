package dockerbuild

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Dispatcher turns a Config into container tool commands and hands them to
// a Runner.
type Dispatcher struct {
	config *Config
	runner Runner
	out    io.Writer
	log    *zap.Logger
}

// NewDispatcher creates a dispatcher. List output goes to out.
func NewDispatcher(config *Config, runner Runner, out io.Writer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		config: config,
		runner: runner,
		out:    out,
		log:    log,
	}
}

// Images returns the names of the available image definitions.
func (d *Dispatcher) Images() ([]string, error) {
	return listDefinitions(d.config.dockerDir())
}

// List prints the available image names on a single line.
func (d *Dispatcher) List() error {
	images, err := d.Images()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(d.out, "Available images: %s\n", strings.Join(images, ","))
	return errors.WithStack(err)
}

func (d *Dispatcher) tags() []string {
	return []string{d.config.Version, LatestTag}
}

// BuildCommand returns the command building the selected image with both
// the version and the latest tag.
func (d *Dispatcher) BuildCommand() *Command {
	args := []string{"build", "-f", d.config.DefinitionFile()}
	for _, ref := range d.config.ImageRef().Tags(d.tags()...) {
		args = append(args, "-t", ref)
	}
	args = append(args, d.config.TopDir)
	return newCommand(d.config.bin(), args...)
}

// PushCommands returns the commands pushing the version tag, then the
// latest tag.
func (d *Dispatcher) PushCommands() []*Command {
	var cmds []*Command
	for _, ref := range d.config.ImageRef().Tags(d.tags()...) {
		cmds = append(cmds, newCommand(d.config.bin(), "push", ref))
	}
	return cmds
}

// Commands returns every command a non-list invocation dispatches, in
// order.
func (d *Dispatcher) Commands() []*Command {
	cmds := []*Command{d.BuildCommand()}
	if d.config.Push {
		cmds = append(cmds, d.PushCommands()...)
	}
	return cmds
}

// Run performs the invocation. In list mode it only lists. Otherwise it
// builds and, when requested, pushes. A failing command does not stop the
// ones after it. When the last command fails, the returned error is a
// *CommandError.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.config.List {
		return d.List()
	}

	ref := d.config.ImageRef()
	if err := ref.validate(d.tags()...); err != nil {
		return err
	}

	d.log.Info("Building image", zap.Stringer("image", ref))

	var lastErr error
	for _, cmd := range d.Commands() {
		lastErr = d.dispatch(ctx, cmd)
	}
	if lastErr != nil {
		return &CommandError{Err: lastErr}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd *Command) error {
	d.log.Debug("Dispatching command", zap.Stringer("command", cmd))
	err := d.runner.Run(ctx, cmd)
	if err != nil {
		d.log.Warn("Command failed",
			zap.Stringer("command", cmd),
			zap.Int("exitCode", ExitCode(err)),
			zap.Error(err))
	}
	return err
}

// CommandError reports that a dispatched command failed. The failure has
// already been logged.
type CommandError struct {
	Err error
}

func (e *CommandError) Error() string { return e.Err.Error() }

// Unwrap returns the command's error.
func (e *CommandError) Unwrap() error { return e.Err }
