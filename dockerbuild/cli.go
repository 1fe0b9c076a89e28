package dockerbuild

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/ridge/must"
	"github.com/spf13/cobra"
)

const (
	flagImage   = "image"
	flagTopDir  = "topdir"
	flagRuntime = "runtime"
	flagBin     = "bin"
	flagConfig  = "config"
)

// flags holds the raw command line values.
type flags struct {
	dryRun  bool
	push    bool
	version string
	list    bool
	image   string

	topDir     string
	runtime    string
	bin        string
	configFile string
	verbose    bool
}

// usageError marks errors caused by a malformed command line.
type usageError struct {
	error
}

func (e usageError) Unwrap() error { return e.error }

type cli struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	newRunner func(config *Config, out io.Writer) Runner
}

func newCLI() *cli {
	return &cli{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		now:       time.Now,
		newRunner: NewRunner,
	}
}

// Main runs the tool with args, which exclude the program name, and returns
// the process exit status.
func Main(ctx context.Context, args []string) int {
	return newCLI().run(ctx, args)
}

func (c *cli) run(ctx context.Context, args []string) int {
	code := 0
	cmd := c.command(&code)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(c.stderr, "Error:", err)
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprint(c.stderr, cmd.UsageString())
			return 2
		}
		return 1
	}
	return code
}

func (c *cli) command(code *int) *cobra.Command {
	wd := must.String(os.Getwd())
	f := new(flags)

	cmd := &cobra.Command{
		Use:   "docker-build",
		Short: "Docker build shell",
		Long: heredoc.Docf(`
			Builds container images defined as <docker_dir>/Dockerfile.<image-name>.

			Images are built via "docker-build -i <image-name>" and published
			using the -p flag.

			A failed build does not stop the push. The exit status is the one
			of the last command run, and 0 in dry-run mode.

			See %s
		`, DefinitionDir(relativeTo(wd, findTopDir(wd)))),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{errors.Errorf("unexpected arguments: %v", args)}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := c.resolve(f, wd, cmd.Flags().Changed)
			if err != nil {
				return err
			}

			log := newLogger(c.stderr, config.Verbose)
			defer func() { _ = log.Sync() }()

			d := NewDispatcher(config, c.newRunner(config, c.stdout), c.stdout, log)
			err = d.Run(cmd.Context())

			var cmdErr *CommandError
			if errors.As(err, &cmdErr) {
				*code = ExitCode(cmdErr)
				return nil
			}
			return err
		},
	}
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	fs := cmd.Flags()
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "do not run")
	fs.BoolVarP(&f.push, "push", "p", false, "push to repository")
	fs.StringVar(&f.version, "version", DefaultVersion(c.now()), "specify version")
	fs.BoolVarP(&f.list, "list", "l", false, "list available docker images")
	fs.StringVarP(&f.image, flagImage, "i", DefaultImage, "select image")
	fs.StringVar(&f.topDir, flagTopDir, "",
		"top-level directory used as build context (default: nearest parent containing ci/docker)")
	fs.StringVar(&f.runtime, flagRuntime, RuntimeDocker.String(), "container runtime: docker | podman")
	fs.StringVar(&f.bin, flagBin, "", "path to the container runtime binary")
	fs.StringVar(&f.configFile, flagConfig, "", "config file (default: <docker_dir>/"+FileConfigName+")")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "turn on verbose logging")

	return cmd
}

// resolve combines built-in defaults, the file config and the flags into
// the invocation config. Flags win over the file, the file over defaults.
func (c *cli) resolve(f *flags, wd string, changed func(string) bool) (*Config, error) {
	topDir := f.topDir
	if topDir == "" {
		topDir = relativeTo(wd, findTopDir(wd))
	}
	topDir = filepath.Clean(topDir)

	rt, err := ParseContainerRuntime(f.runtime)
	if err != nil {
		return nil, usageError{err}
	}

	config := &Config{
		DryRun:  f.dryRun,
		Push:    f.push,
		Version: f.version,
		List:    f.list,
		Image:   f.image,

		TopDir:    topDir,
		DockerDir: DefinitionDir(topDir),

		Organization: DefaultOrganization,
		Group:        DefaultGroup,

		ContainerRuntime: rt,
		ContainerBin:     f.bin,

		Verbose: f.verbose,
	}

	configFile, optional := f.configFile, false
	if configFile == "" {
		configFile, optional = filepath.Join(config.DockerDir, FileConfigName), true
	}
	fc, err := loadFileConfig(configFile, optional)
	if err != nil {
		return nil, err
	}
	if err := fc.apply(config, changed); err != nil {
		return nil, err
	}
	return config, nil
}
