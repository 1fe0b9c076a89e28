package dockerbuild

import (
	"os"
	"path"

	"github.com/pkg/errors"
)

const (
	definitionPrefix  = "Dockerfile."
	definitionPattern = definitionPrefix + "*"
)

// listDefinitions returns the names of the images defined in dir, in
// directory listing order.
func listDefinitions(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, errors.Wrap(err, "open image definition directory")
	}
	defer f.Close()

	entries, err := f.Readdirnames(-1)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", dir)
	}

	var names []string
	for _, e := range entries {
		if ok, _ := path.Match(definitionPattern, e); !ok {
			continue
		}
		names = append(names, e[len(definitionPrefix):])
	}
	return names, nil
}
