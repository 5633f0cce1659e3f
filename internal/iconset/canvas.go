package iconset

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultEdge is the edge length of the square canvas all variants are
// derived from.
const DefaultEdge = 1024

// ErrSourceTooSmall is returned by CheckMinSize when the shorter side of
// the source is below the requested minimum.
var ErrSourceTooSmall = errors.New("source image too small")

// Canvas converts src to NRGBA, scales it uniformly so its shorter side
// equals edge, and crops the centre edge × edge square. The result is a
// true crop: no transparent padding is added.
func Canvas(src image.Image, edge int, f Filter) (*image.NRGBA, error) {
	if edge <= 0 {
		return nil, fmt.Errorf("canvas edge must be positive, got %d", edge)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, errors.New("source image is empty")
	}
	if f == nil {
		f = Lanczos
	}

	w, h := fillSize(b.Dx(), b.Dy(), edge)
	resized := resample(imaging.Clone(src), w, h, f)
	return imaging.Crop(resized, cropRect(w, h, edge)), nil
}

// Resize derives a size × size variant from a square canvas using f.
func Resize(canvas image.Image, size int, f Filter) *image.NRGBA {
	if f == nil {
		f = Lanczos
	}
	return resample(canvas, size, size, f)
}

// CheckMinSize reports ErrSourceTooSmall if the shorter side of src is
// below minSide. Zero disables the check.
func CheckMinSize(src image.Image, minSide int) error {
	if minSide <= 0 {
		return nil
	}
	b := src.Bounds()
	if min(b.Dx(), b.Dy()) < minSide {
		return fmt.Errorf("%w: %dx%d, shorter side must be at least %d", ErrSourceTooSmall, b.Dx(), b.Dy(), minSide)
	}
	return nil
}

// Upscaled reports whether building a canvas of the given edge from src
// enlarges it.
func Upscaled(src image.Image, edge int) bool {
	b := src.Bounds()
	return min(b.Dx(), b.Dy()) < edge
}

// fillSize returns the dimensions of a w × h image scaled by
// edge/min(w, h). The shorter side is pinned to edge and the longer side
// is rounded and never smaller than edge.
func fillSize(w, h, edge int) (int, int) {
	if w <= h {
		return edge, max(edge, scaled(h, edge, w))
	}
	return max(edge, scaled(w, edge, h)), edge
}

func scaled(n, edge, short int) int {
	return int(math.Round(float64(n) * float64(edge) / float64(short)))
}

// cropRect returns the centred edge × edge rectangle within a w × h image,
// clamped to the image bounds.
func cropRect(w, h, edge int) image.Rectangle {
	left := max(0, (w-edge)/2)
	top := max(0, (h-edge)/2)
	return image.Rect(left, top, left+edge, top+edge).Intersect(image.Rect(0, 0, w, h))
}
