package dockerbuild

import (
	"os"
	"path/filepath"
)

// findTopDir returns the nearest directory at or above dir that contains the
// image definition directory, or dir itself when there is none.
func findTopDir(dir string) string {
	for d := dir; ; {
		if st, err := os.Stat(DefinitionDir(d)); err == nil && st.IsDir() {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			return dir
		}
		d = parent
	}
}

// relativeTo renders p relative to base when possible, so the printed
// commands stay short and portable.
func relativeTo(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return p
	}
	return rel
}
