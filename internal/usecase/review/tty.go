package review

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsInteractive reports whether stdin is a TTY. Returns false in CI
// environments and when input is piped.
func IsInteractive() bool {
	return IsTTY(os.Stdin.Fd())
}

// IsOutputTerminal reports whether stdout is a TTY, which gates
// progress output that would pollute piped or redirected output.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
