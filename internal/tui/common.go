package tui

import (
	"fmt"
	"time"
)

// formatDuration renders d as HH:MM:SS for coarse displays such as the
// attempt history.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
