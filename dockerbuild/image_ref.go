package dockerbuild

import (
	"fmt"

	cranename "github.com/google/go-containerregistry/pkg/name"
	"github.com/pkg/errors"
)

// ImageRef names an image repository: <organization>/<group>-<image>.
type ImageRef struct {
	Organization string
	Group        string
	Image        string
}

// Repository returns the repository part of the reference, without a tag.
func (r ImageRef) Repository() string {
	return fmt.Sprintf("%s/%s-%s", r.Organization, r.Group, r.Image)
}

func (r ImageRef) String() string { return r.Repository() }

// Tag returns the reference tagged with tag.
func (r ImageRef) Tag(tag string) string {
	return r.Repository() + ":" + tag
}

// Tags returns the references for each of the tags, in order.
func (r ImageRef) Tags(tags ...string) []string {
	refs := make([]string, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, r.Tag(t))
	}
	return refs
}

// validate checks that every tagged reference is syntactically valid. It
// does not check that the image definition or the remote image exists.
func (r ImageRef) validate(tags ...string) error {
	for _, ref := range r.Tags(tags...) {
		if _, err := cranename.NewTag(ref); err != nil {
			return errors.Wrapf(err, "invalid image reference %q", ref)
		}
	}
	return nil
}
