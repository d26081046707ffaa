// Package prompt asks the operator for confirmations and store values.
package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/terminal"
)

var (
	// ErrBack is returned when the operator presses Esc on a prompt.
	ErrBack = errors.New("prompt: back")
	// ErrCancelled is returned when the operator presses Ctrl+C on a prompt.
	ErrCancelled = errors.New("prompt: cancelled")
)

// UI is the set of form primitives prompts are built from.
type UI interface {
	Select(title string, options []string, current *string) error
	Confirm(title string, value *bool) error
	Input(title string, value *string) error
	SecretInput(title string, value *string) error
	Note(title string, body string) error
}

// HuhUI implements UI using charmbracelet/huh.
type HuhUI struct {
	isTerminal func() bool
	ctrlCAbort bool // set by the key filter while a form runs; reset before each form
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// NewHuhUI creates a HuhUI gated on terminal.IsInteractive.
func NewHuhUI() *HuhUI {
	return &HuhUI{isTerminal: terminal.IsInteractive}
}

func (ui *HuhUI) ensureInteractive() error {
	checker := ui.isTerminal
	if checker == nil {
		checker = terminal.IsInteractive
	}
	if checker() {
		return nil
	}
	return fmt.Errorf(messages.PromptRequiresTerminal)
}

// promptKeyMap aborts the form on both Esc and Ctrl+C; runForm tells them
// apart through ctrlCAbort. The field-level Prev and Next bindings are
// display-only hints, since the form consumes both keys at the Quit level
// before any field sees them.
func promptKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"))

	hints := []struct {
		binding key.Binding
		slots   []*key.Binding
	}{
		{
			binding: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
			slots:   []*key.Binding{&km.Select.Prev, &km.Confirm.Prev, &km.Input.Prev, &km.Note.Prev},
		},
		{
			binding: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "exit")),
			slots:   []*key.Binding{&km.Select.Next, &km.Confirm.Next, &km.Input.Next, &km.Note.Next},
		},
	}
	for _, hint := range hints {
		for _, slot := range hint.slots {
			*slot = hint.binding
		}
	}

	// Filter mode would swallow Esc before it could mean back.
	for _, b := range []*key.Binding{&km.Select.Filter, &km.Select.SetFilter, &km.Select.ClearFilter} {
		b.SetEnabled(false)
	}
	return km
}

// hintField keeps the back and exit hints in the help bar.
//
// huh repositions fields whenever a form is built and on every key press,
// calling WithPosition on each one. That call switches off Prev on the first
// field and Next on the last. A prompt form holds a single field, which is
// both first and last, so without this wrapper neither hint would ever show.
type hintField struct {
	huh.Field
	km *huh.KeyMap
}

// Update delegates to the inner field and returns the wrapper, because the
// group replaces its field with whatever model Update returns.
func (f *hintField) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := f.Field.Update(msg)
	if field, ok := model.(huh.Field); ok {
		f.Field = field
	}
	return f, cmd
}

// WithPosition lets huh record the position, which disables Prev and Next,
// and then puts the prompt key map back.
func (f *hintField) WithPosition(p huh.FieldPosition) huh.Field {
	f.Field.WithPosition(p)
	f.WithKeyMap(f.km)
	return f
}

func newHintField(field huh.Field) huh.Field {
	return &hintField{Field: field, km: promptKeyMap()}
}

// formFilter runs ahead of the form's update loop. A Ctrl+C key press sets
// ctrlCAbort; the KeyMsg arrives before the abort it causes, so the flag is
// in place when runForm inspects it. Interrupts become a plain quit so the
// renderer clears the form on the way out. A SIGINT from outside the
// terminal carries no key press and therefore reads as back.
func (ui *HuhUI) formFilter() func(tea.Model, tea.Msg) tea.Msg {
	return func(_ tea.Model, msg tea.Msg) tea.Msg {
		switch m := msg.(type) {
		case tea.KeyMsg:
			if m.Type == tea.KeyCtrlC {
				ui.ctrlCAbort = true
			}
		case tea.InterruptMsg:
			return tea.QuitMsg{}
		}
		return msg
	}
}

// runForm runs form on stderr. Esc maps to ErrBack and Ctrl+C to ErrCancelled.
func (ui *HuhUI) runForm(form *huh.Form) error {
	if err := ui.ensureInteractive(); err != nil {
		return err
	}

	ui.ctrlCAbort = false
	form.WithKeyMap(promptKeyMap())
	form.WithProgramOptions(
		tea.WithOutput(os.Stderr),
		tea.WithReportFocus(),
		tea.WithFilter(ui.formFilter()),
	)

	err := runFormFunc(form)
	switch {
	case !errors.Is(err, huh.ErrUserAborted):
		return err
	case ui.ctrlCAbort:
		return ErrCancelled
	default:
		return ErrBack
	}
}

// ask runs a form holding the single field.
func (ui *HuhUI) ask(field huh.Field) error {
	return ui.runForm(huh.NewForm(huh.NewGroup(newHintField(field))))
}

// Select renders a single-choice prompt.
func (ui *HuhUI) Select(title string, options []string, current *string) error {
	return ui.ask(huh.NewSelect[string]().Title(title).Options(huh.NewOptions(options...)...).Value(current))
}

// Confirm renders a yes/no prompt.
func (ui *HuhUI) Confirm(title string, value *bool) error {
	return ui.ask(huh.NewConfirm().Title(title).Value(value))
}

// Input renders a plain text prompt.
func (ui *HuhUI) Input(title string, value *string) error {
	return ui.ask(huh.NewInput().Title(title).Value(value))
}

// SecretInput renders a masked text prompt.
func (ui *HuhUI) SecretInput(title string, value *string) error {
	return ui.ask(huh.NewInput().Title(title).Value(value).EchoMode(huh.EchoModePassword))
}

// Note renders an informational screen.
func (ui *HuhUI) Note(title string, body string) error {
	return ui.ask(huh.NewNote().Title(title).Description(body))
}
