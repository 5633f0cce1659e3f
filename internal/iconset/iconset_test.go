package iconset

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testCanvas(t *testing.T) *image.NRGBA {
	t.Helper()
	canvas, err := Canvas(gradient(500, 300), DefaultEdge, Lanczos)
	if err != nil {
		t.Fatal(err)
	}
	return canvas
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestVariantsTable(t *testing.T) {
	want := []Variant{
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
	if !reflect.DeepEqual(Variants, want) {
		t.Errorf("Variants = %v, want %v", Variants, want)
	}
}

func TestSizes(t *testing.T) {
	want := []int{16, 32, 64, 128, 256, 512, 1024}
	if got := Sizes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sizes() = %v, want %v", got, want)
	}
}

func TestLargest(t *testing.T) {
	got := Largest()
	if got.Size != 1024 || got.Name != "icon_512x512@2x.png" {
		t.Errorf("Largest() = %+v", got)
	}
}

func TestWriteProducesAllVariants(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "AppIcon.iconset")
	written, err := Write(dir, testCanvas(t), Lanczos)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(written) != len(Variants) {
		t.Fatalf("wrote %d files, want %d", len(written), len(Variants))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 10 {
		t.Fatalf("iconset has %d entries, want 10", len(entries))
	}

	for i, v := range Variants {
		if filepath.Base(written[i]) != v.Name {
			t.Errorf("written[%d] = %s, want %s", i, written[i], v.Name)
		}
		f, err := os.Open(written[i])
		if err != nil {
			t.Fatal(err)
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s: %v", v.Name, err)
		}
		if cfg.Width != v.Size || cfg.Height != v.Size {
			t.Errorf("%s = %dx%d, want %dx%d", v.Name, cfg.Width, cfg.Height, v.Size, v.Size)
		}
	}

	if err := Verify(dir); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestWriteSharedSizesByteIdentical(t *testing.T) {
	dir := t.TempDir()
	if _, err := Write(dir, testCanvas(t), Lanczos); err != nil {
		t.Fatal(err)
	}
	pairs := [][2]string{
		{"icon_16x16@2x.png", "icon_32x32.png"},
		{"icon_128x128@2x.png", "icon_256x256.png"},
		{"icon_256x256@2x.png", "icon_512x512.png"},
	}
	for _, p := range pairs {
		a, _ := os.ReadFile(filepath.Join(dir, p[0]))
		b, _ := os.ReadFile(filepath.Join(dir, p[1]))
		if len(a) == 0 || !bytes.Equal(a, b) {
			t.Errorf("%s and %s should be byte-identical", p[0], p[1])
		}
	}
}

func TestWriteDeterministic(t *testing.T) {
	src := gradient(640, 480)
	dirs := []string{t.TempDir(), t.TempDir()}
	for _, dir := range dirs {
		canvas, err := Canvas(src, DefaultEdge, Lanczos)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := Write(dir, canvas, Lanczos); err != nil {
			t.Fatal(err)
		}
	}
	for _, v := range Variants {
		a, _ := os.ReadFile(filepath.Join(dirs[0], v.Name))
		b, _ := os.ReadFile(filepath.Join(dirs[1], v.Name))
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between runs", v.Name)
		}
	}
}

func TestVerifyMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := Write(dir, testCanvas(t), Lanczos); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "icon_32x32@2x.png")); err != nil {
		t.Fatal(err)
	}
	if err := Verify(dir); err == nil {
		t.Error("Verify should fail on an incomplete iconset")
	}
}

func TestVerifyWrongSize(t *testing.T) {
	dir := t.TempDir()
	if _, err := Write(dir, testCanvas(t), Lanczos); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "icon_16x16.png"), encodePNG(t, gradient(32, 32)))
	if err := Verify(dir); err == nil {
		t.Error("Verify should fail when a variant has the wrong size")
	}
}

func TestDecodePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_icon.png")
	writeFile(t, path, encodePNG(t, gradient(50, 30)))

	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 30 {
		t.Errorf("bounds = %v, want 50x30", b)
	}
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(40, 20), nil); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "photo.jpg")
	writeFile(t, path, buf.Bytes())

	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("bounds = %v, want 40x20", b)
	}
}

func TestDecodeNotImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_icon.png")
	writeFile(t, path, []byte("definitely not a png"))

	_, err := Decode(path)
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("Decode error = %v, want ErrNotImage", err)
	}
}

func TestDecodeEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	writeFile(t, path, nil)

	_, err := Decode(path)
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("Decode error = %v, want ErrNotImage", err)
	}
}

func TestDecodeCorruptPNG(t *testing.T) {
	data := encodePNG(t, gradient(20, 20))
	path := filepath.Join(t.TempDir(), "corrupt.png")
	writeFile(t, path, data[:40])

	_, err := Decode(path)
	if err == nil {
		t.Fatal("expected error for truncated PNG")
	}
	if errors.Is(err, ErrNotImage) {
		t.Error("a truncated PNG is still recognised as an image")
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Decode error = %v, want fs.ErrNotExist", err)
	}
}
