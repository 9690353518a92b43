//go:build !linux

package input

import (
	"fmt"

	"golang.org/x/term"
)

// AcquireTerminal puts fd into raw mode. The returned func restores the
// previous mode.
func AcquireTerminal(fd int) (func() error, error) {
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set terminal mode: %w", err)
	}
	return func() error { return term.Restore(fd, old) }, nil
}
