package main

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// stdoutIsTerminal is swapped in tests.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// marker returns a status prefix for interactive output, or "" when
// stdout is redirected.
func marker(ok bool) string {
	if !stdoutIsTerminal() {
		return ""
	}
	if ok {
		return "✅ "
	}
	return "❌ "
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
