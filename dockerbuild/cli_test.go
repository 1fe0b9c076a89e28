package dockerbuild

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

type testCLI struct {
	*cli
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	runner *recordingRunner
}

// newTestCLI returns a cli that prints in dry-run mode and records commands
// otherwise.
func newTestCLI() *testCLI {
	tc := &testCLI{
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
		runner: new(recordingRunner),
	}
	tc.cli = &cli{
		stdout: tc.stdout,
		stderr: tc.stderr,
		now:    func() time.Time { return testNow },
		newRunner: func(config *Config, out io.Writer) Runner {
			if config.DryRun {
				return newDryRunner(out)
			}
			return tc.runner
		},
	}
	return tc
}

func (tc *testCLI) run(args ...string) int {
	return tc.cli.run(context.Background(), args)
}

func TestCLI_DryRunBuild(t *testing.T) {
	top := newTopDir(t, "ubuntu", "alpine")
	tc := newTestCLI()

	code := tc.run("-i", "alpine", "--version", "1.2.3", "-n", "--topdir", top)
	require.Equal(t, 0, code)

	dockerDir := filepath.Join(top, "ci", "docker")
	require.Equal(t,
		"DRY: docker build -f "+dockerDir+"/Dockerfile.alpine"+
			" -t objectboxio/buildenv-generator-alpine:1.2.3"+
			" -t objectboxio/buildenv-generator-alpine:latest "+top+"\n",
		tc.stdout.String())
	require.Contains(t, tc.stderr.String(), "Building image")
	require.Contains(t, tc.stderr.String(), "objectboxio/buildenv-generator-alpine")
	require.Empty(t, tc.runner.cmds)
}

func TestCLI_DryRunBuildDefaultTopDir(t *testing.T) {
	top := newTopDir(t, "alpine")
	t.Chdir(top)
	tc := newTestCLI()

	require.Equal(t, 0, tc.run("-i", "alpine", "--version", "1.2.3", "-n"))
	require.Equal(t,
		"DRY: docker build -f ./ci/docker/Dockerfile.alpine"+
			" -t objectboxio/buildenv-generator-alpine:1.2.3"+
			" -t objectboxio/buildenv-generator-alpine:latest .\n",
		tc.stdout.String())
}

func TestCLI_DryRunBuildFromSubdirectory(t *testing.T) {
	top := newTopDir(t, "alpine")
	sub := filepath.Join(top, "scripts")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)
	tc := newTestCLI()

	require.Equal(t, 0, tc.run("-i", "alpine", "--version", "1.2.3", "-n"))
	require.Equal(t,
		"DRY: docker build -f ../ci/docker/Dockerfile.alpine"+
			" -t objectboxio/buildenv-generator-alpine:1.2.3"+
			" -t objectboxio/buildenv-generator-alpine:latest ..\n",
		tc.stdout.String())
}

func TestCLI_DryRunPushLongFlags(t *testing.T) {
	top := newTopDir(t, "ubuntu")
	tc := newTestCLI()

	code := tc.run("--dry-run", "--push", "--topdir", top)
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSuffix(tc.stdout.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "-t objectboxio/buildenv-generator-ubuntu:2024-03-05 ")
	require.Equal(t, "DRY: docker push objectboxio/buildenv-generator-ubuntu:2024-03-05", lines[1])
	require.Equal(t, "DRY: docker push objectboxio/buildenv-generator-ubuntu:latest", lines[2])
}

func TestCLI_Execute(t *testing.T) {
	top := newTopDir(t, "alpine")
	tc := newTestCLI()

	code := tc.run("-p", "-i", "alpine", "--version", "7", "--topdir", top)
	require.Equal(t, 0, code)
	require.Empty(t, tc.stdout.String())
	require.Equal(t, []string{
		"docker build -f " + DefinitionDir(top) + "/Dockerfile.alpine" +
			" -t objectboxio/buildenv-generator-alpine:7" +
			" -t objectboxio/buildenv-generator-alpine:latest " + top,
		"docker push objectboxio/buildenv-generator-alpine:7",
		"docker push objectboxio/buildenv-generator-alpine:latest",
	}, tc.runner.cmds)
}

func TestCLI_ExitStatusOfLastCommand(t *testing.T) {
	top := newTopDir(t, "alpine")

	tc := newTestCLI()
	tc.runner.errs = map[int]error{0: errors.New("build failed")}
	require.Equal(t, 0, tc.run("-p", "-i", "alpine", "--topdir", top))
	require.Len(t, tc.runner.cmds, 3)
	require.Contains(t, tc.stderr.String(), "Command failed")

	tc = newTestCLI()
	tc.runner.errs = map[int]error{0: errors.New("build failed")}
	require.Equal(t, 1, tc.run("-i", "alpine", "--topdir", top))
}

func TestCLI_List(t *testing.T) {
	top := newTopDir(t, "ubuntu", "alpine")
	tc := newTestCLI()

	code := tc.run("-l", "-p", "--topdir", top)
	require.Equal(t, 0, code)
	require.Empty(t, tc.runner.cmds)

	out := strings.TrimSuffix(tc.stdout.String(), "\n")
	require.NotContains(t, out, "\n")
	require.True(t, strings.HasPrefix(out, "Available images: "))
	require.ElementsMatch(t, []string{"ubuntu", "alpine"},
		strings.Split(strings.TrimPrefix(out, "Available images: "), ","))
}

func TestCLI_ListMissingDir(t *testing.T) {
	tc := newTestCLI()

	code := tc.run("--list", "--topdir", t.TempDir())
	require.Equal(t, 1, code)
	require.Contains(t, tc.stderr.String(), "Error:")
}

func TestCLI_FileConfig(t *testing.T) {
	top := newTopDir(t, "ubuntu", "alpine")
	writeFile(t, filepath.Join(DefinitionDir(top), FileConfigName),
		"organization: example\nimage: alpine\nruntime: podman\n")

	tc := newTestCLI()
	require.Equal(t, 0, tc.run("-n", "-p", "--version", "1", "--topdir", top))
	require.Contains(t, tc.stdout.String(), "DRY: podman build -f "+DefinitionDir(top)+"/Dockerfile.alpine")
	require.Contains(t, tc.stdout.String(), "DRY: podman push example/buildenv-generator-alpine:1\n")

	tc = newTestCLI()
	require.Equal(t, 0, tc.run("-n", "-i", "ubuntu", "--runtime", "docker", "--version", "1", "--topdir", top))
	require.Contains(t, tc.stdout.String(), "DRY: docker build -f "+DefinitionDir(top)+"/Dockerfile.ubuntu")
	require.Contains(t, tc.stdout.String(), "-t example/buildenv-generator-ubuntu:1 ")
}

func TestCLI_ExplicitFileConfig(t *testing.T) {
	top := newTopDir(t, "alpine")
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "group: toolchain\n")

	tc := newTestCLI()
	require.Equal(t, 0, tc.run("-n", "-i", "alpine", "--version", "1", "--topdir", top, "--config", path))
	require.Contains(t, tc.stdout.String(), "-t objectboxio/toolchain-alpine:1 ")

	tc = newTestCLI()
	require.Equal(t, 1, tc.run("-n", "--topdir", top, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestCLI_BadFileConfig(t *testing.T) {
	top := newTopDir(t, "alpine")
	writeFile(t, filepath.Join(DefinitionDir(top), FileConfigName), "unknown: 1\n")

	tc := newTestCLI()
	require.Equal(t, 1, tc.run("-n", "--topdir", top))
	require.Empty(t, tc.stdout.String())
}

func TestCLI_InvalidImage(t *testing.T) {
	top := newTopDir(t, "alpine")
	tc := newTestCLI()

	require.Equal(t, 1, tc.run("-i", "Alpine", "--topdir", top))
	require.Empty(t, tc.runner.cmds)
	require.Contains(t, tc.stderr.String(), "invalid image reference")
}

func TestCLI_UsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--bogus"},
		{"extra-arg"},
		{"--runtime", "lxc"},
	} {
		tc := newTestCLI()
		require.Equal(t, 2, tc.run(args...), args)
		require.Contains(t, tc.stderr.String(), "Usage:", args)
		require.Empty(t, tc.runner.cmds, args)
	}
}

func TestCLI_Help(t *testing.T) {
	t.Chdir(t.TempDir())
	tc := newTestCLI()

	require.Equal(t, 0, tc.run("--help"))
	out := tc.stdout.String()
	require.Contains(t, out, "--dry-run")
	require.Contains(t, out, "--version string")
	require.Contains(t, out, `(default "2024-03-05")`)
	require.Contains(t, out, `(default "ubuntu")`)
	require.Contains(t, out, "A failed build does not stop the push.")
	require.Contains(t, out, "The exit status is the one\nof the last command run")
	require.Contains(t, out, "See ./ci/docker")
}
