package dockerbuild

import (
	"strings"
	"time"
)

const (
	// DefaultOrganization is the registry namespace images are published under.
	DefaultOrganization = "objectboxio"

	// DefaultGroup prefixes every image name inside the organization.
	DefaultGroup = "buildenv-generator"

	// DefaultImage is built when no image is selected.
	DefaultImage = "ubuntu"

	// LatestTag is always applied next to the version tag.
	LatestTag = "latest"

	versionLayout = "2006-01-02"
)

// DefinitionDir returns the directory holding the Dockerfile.<image> files
// for the given top-level directory. The path is not cleaned, so a topDir
// of "." yields "./ci/docker".
func DefinitionDir(topDir string) string {
	return joinPath(topDir, "ci/docker")
}

// joinPath joins with a slash but keeps a leading "./" or "../".
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

// DefaultVersion returns the version tag used when none is given: the
// calendar date of now in YYYY-MM-DD form.
func DefaultVersion(now time.Time) string {
	return now.Format(versionLayout)
}

// Config is the resolved configuration of a single invocation.
type Config struct {
	DryRun  bool
	Push    bool
	Version string
	List    bool
	Image   string

	// TopDir is the build context passed to the container tool.
	TopDir string

	// DockerDir holds the image definitions; defaults to
	// DefinitionDir(TopDir).
	DockerDir string

	Organization string
	Group        string

	// ContainerRuntime selects the flavor of the container tool.
	// Defaults to RuntimeDocker.
	ContainerRuntime ContainerRuntime

	// ContainerBin is the path to the container tool binary.
	// If empty, uses the default binary name of ContainerRuntime.
	ContainerBin string

	Verbose bool
}

func (c *Config) dockerDir() string {
	if c.DockerDir != "" {
		return c.DockerDir
	}
	return DefinitionDir(c.TopDir)
}

func (c *Config) bin() string {
	if c.ContainerBin != "" {
		return c.ContainerBin
	}
	return c.ContainerRuntime.defaultBin()
}

// ImageRef returns the reference of the selected image.
func (c *Config) ImageRef() ImageRef {
	return ImageRef{
		Organization: c.Organization,
		Group:        c.Group,
		Image:        c.Image,
	}
}

// DefinitionFile returns the path of the selected image definition.
func (c *Config) DefinitionFile() string {
	return joinPath(c.dockerDir(), definitionPrefix+c.Image)
}
