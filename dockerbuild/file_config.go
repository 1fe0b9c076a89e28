package dockerbuild

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileConfigName is the name of the optional configuration file looked up
// inside the image definition directory.
const FileConfigName = "docker-build.yaml"

// FileConfig holds the settings that can be fixed per repository. Command
// line flags take precedence over them.
type FileConfig struct {
	Organization string `yaml:"organization,omitempty"`
	Group        string `yaml:"group,omitempty"`
	Image        string `yaml:"image,omitempty"`
	Runtime      string `yaml:"runtime,omitempty"`
	Bin          string `yaml:"bin,omitempty"`
}

// loadFileConfig reads the file config at path. When optional is set, a
// missing file yields an empty config.
func loadFileConfig(path string, optional bool) (*FileConfig, error) {
	bs, err := os.ReadFile(path)
	if optional && os.IsNotExist(err) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	fc := new(FileConfig)
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "decode config file %s", path)
	}
	return fc, nil
}

// apply fills the fields of config that the file sets and that were not
// given explicitly on the command line.
func (fc *FileConfig) apply(config *Config, changed func(flag string) bool) error {
	if fc.Organization != "" {
		config.Organization = fc.Organization
	}
	if fc.Group != "" {
		config.Group = fc.Group
	}
	if fc.Image != "" && !changed(flagImage) {
		config.Image = fc.Image
	}
	if fc.Runtime != "" && !changed(flagRuntime) {
		rt, err := ParseContainerRuntime(fc.Runtime)
		if err != nil {
			return err
		}
		config.ContainerRuntime = rt
	}
	if fc.Bin != "" && !changed(flagBin) {
		config.ContainerBin = fc.Bin
	}
	return nil
}
