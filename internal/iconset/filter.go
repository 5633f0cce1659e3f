package iconset

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Filter resamples an image to an exact size. Every implementation is a
// windowed-sinc filter; nearest-neighbour and bilinear are not offered.
type Filter interface {
	Name() string
	Resize(img image.Image, width, height int) *image.NRGBA
}

var (
	// Lanczos is imaging's three-lobe Lanczos filter. It is the default.
	Lanczos Filter = imagingLanczos{}
	// Lanczos3 is nfnt/resize's Lanczos3 filter.
	Lanczos3 Filter = nfntLanczos3{}
)

// Filters lists the selectable filters by name.
var Filters = []Filter{Lanczos, Lanczos3}

// ParseFilter returns the filter with the given name. The empty name
// selects Lanczos.
func ParseFilter(name string) (Filter, error) {
	if name == "" {
		return Lanczos, nil
	}
	for _, f := range Filters {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown filter %q (want lanczos or lanczos3)", name)
}

type imagingLanczos struct{}

func (imagingLanczos) Name() string { return "lanczos" }

func (imagingLanczos) Resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

type nfntLanczos3 struct{}

func (nfntLanczos3) Name() string { return "lanczos3" }

// Resize returns NRGBA like the imaging filter; nfnt produces premultiplied
// RGBA for most inputs.
func (nfntLanczos3) Resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Clone(resize.Resize(uint(width), uint(height), img, resize.Lanczos3))
}

// resample scales img to width × height with f. Equal sizes are cloned
// rather than filtered so that an already-sized image passes through
// unchanged.
func resample(img image.Image, width, height int, f Filter) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img)
	}
	return f.Resize(img, width, height)
}
