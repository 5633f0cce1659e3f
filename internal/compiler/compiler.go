// Package compiler packages an .iconset directory into a single .icns file.
package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jackmordaunt/icns/v3"

	"github.com/Mavwarf/mkicon/internal/iconset"
	"github.com/Mavwarf/mkicon/internal/paths"
	"github.com/Mavwarf/mkicon/internal/tmpl"
)

// Compiler turns a populated iconset directory into a compiled icon at
// outPath. A nil error is the only success signal.
type Compiler interface {
	Name() string
	Compile(iconsetDir, outPath string) error
}

// Func adapts a plain function to Compiler.
type Func func(iconsetDir, outPath string) error

func (Func) Name() string { return "func" }

func (f Func) Compile(iconsetDir, outPath string) error { return f(iconsetDir, outPath) }

// ErrNoIconutil is returned by Iconutil when the iconutil binary is not on
// PATH (it ships with macOS only).
var ErrNoIconutil = errors.New("iconutil not found on PATH (macOS only; use --compiler native)")

// Iconutil runs Apple's iconutil.
type Iconutil struct{}

func (Iconutil) Name() string { return "iconutil" }

func (Iconutil) Compile(iconsetDir, outPath string) error {
	if _, err := exec.LookPath("iconutil"); err != nil {
		return fmt.Errorf("%w: %w", ErrNoIconutil, err)
	}
	cmd := exec.Command("iconutil", "-c", "icns", iconsetDir, "-o", outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("iconutil failed: %w\n%s", err, out)
	}
	return nil
}

// Native encodes the icon in-process. It verifies the iconset, then builds
// the .icns from the largest rendition.
type Native struct{}

func (Native) Name() string { return "native" }

func (Native) Compile(iconsetDir, outPath string) error {
	if err := iconset.Verify(iconsetDir); err != nil {
		return err
	}
	src, err := iconset.Decode(filepath.Join(iconsetDir, iconset.Largest().Name))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := icns.Encode(&buf, src); err != nil {
		return fmt.Errorf("icns encode: %w", err)
	}
	return paths.AtomicWrite(outPath, buf.Bytes())
}

// Command runs a user-supplied external compiler. {iconset} and {output}
// in Args are replaced with the iconset directory and output path.
type Command struct {
	Args []string
}

func (Command) Name() string { return "command" }

func (c Command) Compile(iconsetDir, outPath string) error {
	if len(c.Args) == 0 {
		return errors.New("compiler command is empty")
	}
	args := tmpl.ExpandAll(c.Args, tmpl.Vars{Iconset: iconsetDir, Output: outPath})
	bin, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("%s not found on PATH: %w", args[0], err)
	}
	cmd := exec.Command(bin, args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w\n%s", args[0], err, out)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("%s exited successfully but produced no output: %w", args[0], err)
	}
	return nil
}

// Names lists the values accepted by ByName.
var Names = []string{"auto", "iconutil", "native", "command"}

// ByName returns the compiler for name. "auto" and "" select Default.
// command is only used for the "command" compiler.
func ByName(name string, command []string) (Compiler, error) {
	switch name {
	case "", "auto":
		return Default(), nil
	case "iconutil":
		return Iconutil{}, nil
	case "native":
		return Native{}, nil
	case "command":
		if len(command) == 0 {
			return nil, errors.New(`compiler "command" requires a command`)
		}
		return Command{Args: command}, nil
	default:
		return nil, fmt.Errorf("unknown compiler %q (want auto, iconutil, native or command)", name)
	}
}
