//go:build darwin

package compiler

// Default returns iconutil, which is always present on macOS.
func Default() Compiler {
	return Iconutil{}
}
