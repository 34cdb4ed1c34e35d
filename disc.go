// Package disc opens optical disc images for reading. An image is either a monolithic file described by a cue
// sheet, a data file described by a binary media descriptor, or a single ISO9660 image on its own.
package disc

import (
	"github.com/rstms/disc-kit/pkg/loader"
	"github.com/rstms/disc-kit/pkg/option"
)

// Open loads an image together with its descriptor. The two paths may be given in either order.
func Open(image, descriptor string, opts ...option.OpenOption) (*loader.Disc, error) {
	return loader.Open(image, descriptor, opts...)
}

// OpenImage loads a single image that holds one whole-disc data track.
func OpenImage(image string, opts ...option.OpenOption) (*loader.Disc, error) {
	return loader.Open(image, "", opts...)
}
