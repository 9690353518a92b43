package input

import "golang.org/x/term"

// IsTerminal reports whether fd is an interactive terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}
