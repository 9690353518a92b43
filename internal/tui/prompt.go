package tui

import (
	"errors"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// savePrompt asks whether to keep unsaved ledger changes and where to
// write them.
type savePrompt struct {
	form      *huh.Form
	save      *bool
	path      *string
	cancelled bool
}

func newSavePrompt(path string, lastErr error) savePrompt {
	save := true
	p := path

	confirm := huh.NewConfirm().
		Title("The splits have unsaved changes. Save them?").
		Affirmative("Save").
		Negative("Discard").
		Value(&save)
	if lastErr != nil {
		confirm = confirm.Description("Last attempt failed: " + lastErr.Error())
	}

	form := huh.NewForm(
		huh.NewGroup(confirm),
		huh.NewGroup(
			huh.NewInput().
				Title("Save to").
				Value(&p).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("path is required")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return !save }),
	).WithShowHelp(true).WithShowErrors(true)

	return savePrompt{form: form, save: &save, path: &p}
}

func (m savePrompt) Init() tea.Cmd {
	return m.form.Init()
}

func (m savePrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, tea.Quit
	case huh.StateAborted:
		m.cancelled = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m savePrompt) View() string {
	if m.form.State != huh.StateNormal {
		return ""
	}
	return m.form.View()
}

// target is the chosen path, or "" when the changes are to be discarded.
func (m savePrompt) target() string {
	if m.cancelled || !*m.save {
		return ""
	}
	return strings.TrimSpace(*m.path)
}

// PromptSave asks the operator on in/out whether to save the ledger. It
// returns the path to save to, or "" to discard. lastErr, when set, is the
// failure of the previous attempt and is shown with the question.
func PromptSave(in io.Reader, out io.Writer, path string, lastErr error) (string, error) {
	p := tea.NewProgram(newSavePrompt(path, lastErr), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(savePrompt)
	if !ok {
		return "", nil
	}
	return m.target(), nil
}
