package dockerbuild

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ContainerRuntime specifies which container tool builds and pushes images.
type ContainerRuntime int

const (
	// RuntimeDocker uses the docker CLI.
	RuntimeDocker ContainerRuntime = iota
	// RuntimePodman uses the podman CLI.
	RuntimePodman
)

// ParseContainerRuntime parses a runtime name as accepted on the command line.
func ParseContainerRuntime(s string) (ContainerRuntime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "docker":
		return RuntimeDocker, nil
	case "podman":
		return RuntimePodman, nil
	}
	return 0, errors.Errorf("unknown container runtime %q, want docker or podman", s)
}

func (r ContainerRuntime) String() string {
	switch r {
	case RuntimeDocker:
		return "docker"
	case RuntimePodman:
		return "podman"
	}
	return fmt.Sprintf("ContainerRuntime(%d)", int(r))
}

func (r ContainerRuntime) defaultBin() string {
	if r == RuntimePodman {
		return "podman"
	}
	return "docker"
}
