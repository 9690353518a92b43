package input

import "errors"

var (
	// ErrUnsupported is returned by OpenKeyboards on platforms without a
	// hardware backend.
	ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

	// ErrNoDevices means no keyboard device could be opened.
	ErrNoDevices = errors.New("no readable keyboard devices (need to be in the 'input' group or run as root)")
)

// KeyEvent is one key transition read from a device.
type KeyEvent struct {
	Key  string // key identifier, e.g. "KEY_F1"
	Down bool
}

// Device is a blocking source of key events. Close must unblock a pending
// ReadKey.
type Device interface {
	Name() string
	ReadKey() (KeyEvent, error)
	Close() error
}
