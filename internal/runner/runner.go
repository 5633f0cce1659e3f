// Package runner performs one mkicon run: decode the source, build the
// canvas, populate the staging iconset and compile it.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Mavwarf/mkicon/internal/compiler"
	"github.com/Mavwarf/mkicon/internal/iconset"
	"github.com/Mavwarf/mkicon/internal/paths"
)

var (
	// ErrSourceNotFound means the source image does not exist. Nothing
	// has been written.
	ErrSourceNotFound = errors.New("source icon not found")
	// ErrDecode means the source could not be read as an image. No
	// staging directory has been created.
	ErrDecode = errors.New("decoding source icon")
	// ErrCompile means the compiler failed. The populated staging
	// directory is kept for inspection.
	ErrCompile = errors.New("compiling iconset")
)

// Options configures a run. Source, Output and IconsetDir are required;
// the rest have defaults.
type Options struct {
	Source     string
	Output     string
	IconsetDir string

	Edge        int               // default iconset.DefaultEdge
	Filter      iconset.Filter    // default iconset.Lanczos
	Compiler    compiler.Compiler // default compiler.Default()
	MinSource   int               // 0 disables the minimum-size check
	KeepIconset bool              // keep the staging directory after success

	Progress io.Writer    // per-file progress lines; default io.Discard
	Logger   *slog.Logger // diagnostics; default discards
}

// Result describes what a run produced.
type Result struct {
	Output     string
	IconsetDir string   // staging directory; empty if it was removed
	Files      []string // variant files written, in iconset order
	Upscaled   bool
	Duration   time.Duration
}

func (o *Options) setDefaults() {
	if o.Edge == 0 {
		o.Edge = iconset.DefaultEdge
	}
	if o.Filter == nil {
		o.Filter = iconset.Lanczos
	}
	if o.Compiler == nil {
		o.Compiler = compiler.Default()
	}
	if o.Progress == nil {
		o.Progress = io.Discard
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// Execute runs the pipeline once. Errors wrap ErrSourceNotFound,
// ErrDecode, iconset.ErrSourceTooSmall or ErrCompile; any other error
// comes from writing the staging directory.
func Execute(opts Options) (Result, error) {
	opts.setDefaults()
	start := time.Now()
	log := opts.Logger
	res := Result{Output: opts.Output}

	if _, err := os.Stat(opts.Source); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, fmt.Errorf("%w: %s", ErrSourceNotFound, opts.Source)
		}
		return res, err
	}

	src, err := iconset.Decode(opts.Source)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	b := src.Bounds()
	log.Debug("decoded source", "path", opts.Source, "width", b.Dx(), "height", b.Dy())

	if err := iconset.CheckMinSize(src, opts.MinSource); err != nil {
		return res, err
	}
	if iconset.Upscaled(src, opts.Edge) {
		res.Upscaled = true
		log.Warn("source is smaller than the canvas and will be upscaled",
			"width", b.Dx(), "height", b.Dy(), "edge", opts.Edge)
	}

	canvas, err := iconset.Canvas(src, opts.Edge, opts.Filter)
	if err != nil {
		return res, err
	}
	log.Debug("built canvas", "edge", opts.Edge, "filter", opts.Filter.Name())

	// A directory left by an earlier failed run must not leak stale files
	// into this bundle.
	if err := os.RemoveAll(opts.IconsetDir); err != nil {
		return res, fmt.Errorf("removing stale iconset: %w", err)
	}
	files, err := iconset.Write(opts.IconsetDir, canvas, opts.Filter)
	res.Files = files
	if err != nil {
		return res, err
	}
	res.IconsetDir = opts.IconsetDir
	for _, f := range files {
		fmt.Fprintf(opts.Progress, "  Created %s\n", filepath.Base(f))
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), paths.DirPerm); err != nil {
		return res, err
	}
	log.Debug("compiling", "compiler", opts.Compiler.Name(), "iconset", opts.IconsetDir, "output", opts.Output)
	if err := opts.Compiler.Compile(opts.IconsetDir, opts.Output); err != nil {
		res.Duration = time.Since(start)
		log.Debug("keeping iconset for inspection", "iconset", opts.IconsetDir)
		return res, fmt.Errorf("%w: %w", ErrCompile, err)
	}

	if !opts.KeepIconset {
		if err := os.RemoveAll(opts.IconsetDir); err != nil {
			log.Warn("could not remove iconset", "iconset", opts.IconsetDir, "err", err)
		} else {
			res.IconsetDir = ""
		}
	}
	res.Duration = time.Since(start)
	return res, nil
}
