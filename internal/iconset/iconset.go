// Package iconset builds the renditions of a macOS .iconset directory from
// a single source image.
package iconset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"

	"github.com/Mavwarf/mkicon/internal/paths"
)

// Variant is one rendition in an iconset: a square PNG of Size pixels
// stored under Name.
type Variant struct {
	Size int
	Name string
}

// Variants is the rendition ladder iconutil expects. 32 and 256 appear
// twice: the @2x entry of one size shares pixels with the next size up.
var Variants = []Variant{
	{16, "icon_16x16.png"},
	{32, "icon_16x16@2x.png"},
	{32, "icon_32x32.png"},
	{64, "icon_32x32@2x.png"},
	{128, "icon_128x128.png"},
	{256, "icon_128x128@2x.png"},
	{256, "icon_256x256.png"},
	{512, "icon_256x256@2x.png"},
	{512, "icon_512x512.png"},
	{1024, "icon_512x512@2x.png"},
}

// ErrNotImage is returned by Decode when the file content is not a
// recognised image type.
var ErrNotImage = errors.New("not an image file")

// Sizes returns the distinct variant sizes in ascending order.
func Sizes() []int {
	var sizes []int
	for _, v := range Variants {
		if len(sizes) == 0 || sizes[len(sizes)-1] != v.Size {
			sizes = append(sizes, v.Size)
		}
	}
	return sizes
}

// Largest returns the variant with the biggest pixel size.
func Largest() Variant {
	best := Variants[0]
	for _, v := range Variants[1:] {
		if v.Size > best.Size {
			best = v
		}
	}
	return best
}

// Decode reads the image at path. The content type is sniffed first so
// that non-image files fail with ErrNotImage instead of a decoder error.
// EXIF orientation is applied for formats that carry it.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !filetype.IsImage(head[:n]) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotImage)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Encode returns the PNG encoding of img.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render derives and encodes every distinct variant size from canvas.
// Sizes are rendered in parallel; they share only the read-only canvas.
// The returned map is keyed by pixel size.
func Render(canvas image.Image, f Filter) (map[int][]byte, error) {
	var (
		mu      sync.Mutex
		encoded = make(map[int][]byte)
		g       errgroup.Group
	)
	g.SetLimit(runtime.NumCPU())
	for _, size := range Sizes() {
		g.Go(func() error {
			data, err := Encode(Resize(canvas, size, f))
			if err != nil {
				return fmt.Errorf("encoding %dx%d: %w", size, size, err)
			}
			mu.Lock()
			encoded[size] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return encoded, nil
}

// Write renders every variant of canvas and writes them into dir, which
// is created if needed. All sizes are rendered before the first file is
// written. Paths are returned in Variants order.
func Write(dir string, canvas image.Image, f Filter) ([]string, error) {
	encoded, err := Render(canvas, f)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, paths.DirPerm); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(Variants))
	for _, v := range Variants {
		p := filepath.Join(dir, v.Name)
		if err := os.WriteFile(p, encoded[v.Size], paths.FilePerm); err != nil {
			return written, fmt.Errorf("writing %s: %w", v.Name, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// Verify checks that dir holds every variant as a PNG of its mandated
// square size.
func Verify(dir string) error {
	for _, v := range Variants {
		if err := verifyFile(filepath.Join(dir, v.Name), v.Size); err != nil {
			return err
		}
	}
	return nil
}

func verifyFile(path string, size int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("iconset incomplete: %w", err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if cfg.Width != size || cfg.Height != size {
		return fmt.Errorf("%s: got %dx%d, want %dx%d", filepath.Base(path), cfg.Width, cfg.Height, size, size)
	}
	return nil
}
