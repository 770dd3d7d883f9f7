// Package internal provides shared utilities for planner CLI commands.
package internal

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsInteractive returns true if the given file descriptor is a TTY.
// This is used to determine if interactive prompts should be shown.
func IsInteractive(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsTerminal reports whether r is an interactive terminal. Readers that are
// not files, such as the buffers tests feed in, count as interactive.
func IsTerminal(r io.Reader) bool {
	if f, ok := r.(*os.File); ok {
		return IsInteractive(f.Fd())
	}
	return true
}

// UseColor reports whether styled output should be written to w. NO_COLOR
// disables it, and only terminals get color.
func UseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return IsInteractive(f.Fd())
}
