package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/sadopc/termsplit/internal/input"
)

// HelpText lists the hotkey bindings followed by the local keys.
func HelpText(b input.Bindings) []string {
	lines := []string{"Hotkeys:"}
	for _, d := range input.Descriptions {
		k := b[d.Action]
		if k == "" {
			k = "-"
		}
		lines = append(lines, fmt.Sprintf("  %-8s %-14s %s", d.Action, k, d.Text))
	}

	h := help.New()
	h.ShowAll = false
	lines = append(lines, "Terminal: "+h.View(input.LocalKeys))
	return lines
}
