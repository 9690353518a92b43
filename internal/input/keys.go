package input

import "github.com/charmbracelet/bubbles/key"

// localKeyMap is the fixed command set read from the terminal, independent
// of the hotkey bindings.
type localKeyMap struct {
	Help   key.Binding
	Quit   key.Binding
	Save   key.Binding
	Redraw key.Binding
}

var LocalKeys = localKeyMap{
	Help: key.NewBinding(
		key.WithKeys("h", "?"),
		key.WithHelp("h", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save"),
	),
	Redraw: key.NewBinding(
		key.WithKeys("r", "\x0c"),
		key.WithHelp("r", "redraw"),
	),
}

// Lookup maps a typed character to its action.
func (k localKeyMap) Lookup(c string) (Action, bool) {
	for _, b := range []struct {
		binding key.Binding
		action  Action
	}{
		{k.Help, Help},
		{k.Quit, Quit},
		{k.Save, Save},
		{k.Redraw, Redraw},
	} {
		for _, s := range b.binding.Keys() {
			if s == c {
				return b.action, true
			}
		}
	}
	return "", false
}

func (k localKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Save, k.Redraw, k.Quit}
}

func (k localKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
