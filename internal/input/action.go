// Package input turns global hotkeys and local terminal keys into one
// ordered stream of logical actions.
package input

import (
	"fmt"
	"sort"
	"strings"
)

// Action is a logical operation requested by the operator.
type Action string

// Timing actions, bound to hardware keys.
const (
	Split   Action = "SPLIT"
	Unsplit Action = "UNSPLIT"
	Skip    Action = "SKIP"
	Pause   Action = "PAUSE"
	Stop    Action = "STOP"
)

// Administrative actions. These may be bound to hardware keys too, and are
// always available from the local keyboard.
const (
	Help   Action = "HELP"
	Save   Action = "SAVE"
	Quit   Action = "QUIT"
	Redraw Action = "REDRAW"
)

// Reload is produced by the splits file watcher, never by a key.
const Reload Action = "RELOAD"

// Descriptions documents the bindable actions, in display order.
var Descriptions = []struct {
	Action Action
	Text   string
}{
	{Split, "Begin timing, and mark each split"},
	{Unsplit, "Undo the most recent split (no effect on first split)"},
	{Skip, "Skip a split without recording the time"},
	{Pause, "Pause the timer, or resume a paused timer"},
	{Stop, "Stop timing, saving any best times acquired in that run"},
	{Help, "Show help"},
	{Save, "Save the splits file"},
	{Quit, "Quit"},
	{Redraw, "Redraw the screen"},
}

// Bindable reports whether a can appear in a binding table.
func Bindable(a Action) bool {
	for _, d := range Descriptions {
		if d.Action == a {
			return true
		}
	}
	return false
}

// Bindings maps actions to hardware key identifiers such as "KEY_KP1".
type Bindings map[Action]string

// Invert returns the key -> action lookup used by device readers.
func (b Bindings) Invert() map[string]Action {
	m := make(map[string]Action, len(b))
	for a, k := range b {
		if k != "" {
			m[k] = a
		}
	}
	return m
}

// Validate rejects unknown actions and keys bound twice.
func (b Bindings) Validate() error {
	seen := make(map[string]Action, len(b))
	actions := make([]string, 0, len(b))
	for a := range b {
		actions = append(actions, string(a))
	}
	sort.Strings(actions)

	var errs []string
	for _, name := range actions {
		a := Action(name)
		k := b[a]
		if !Bindable(a) {
			errs = append(errs, fmt.Sprintf("unknown action %q", a))
			continue
		}
		if k == "" {
			continue
		}
		if other, dup := seen[k]; dup {
			errs = append(errs, fmt.Sprintf("key %s bound to both %s and %s", k, other, a))
			continue
		}
		seen[k] = a
	}
	if len(errs) > 0 {
		return fmt.Errorf("bindings: %s", strings.Join(errs, "; "))
	}
	return nil
}
