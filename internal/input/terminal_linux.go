//go:build linux

package input

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// AcquireTerminal turns off echo and line buffering on fd so single key
// presses can be read, leaving output processing alone. The returned func
// restores the previous mode.
func AcquireTerminal(fd int) (func() error, error) {
	old, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("get terminal mode: %w", err)
	}
	t := *old
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &t); err != nil {
		return nil, fmt.Errorf("set terminal mode: %w", err)
	}
	return func() error {
		return unix.IoctlSetTermios(fd, unix.TCSETS, old)
	}, nil
}
