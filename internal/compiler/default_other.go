//go:build !darwin

package compiler

// Default returns the in-process encoder; iconutil exists only on macOS.
func Default() Compiler {
	return Native{}
}
