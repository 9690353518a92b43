//go:build !linux

package input

import "log/slog"

// OpenKeyboards has no backend outside Linux.
func OpenKeyboards(log *slog.Logger) ([]Device, error) {
	return nil, ErrUnsupported
}
