package prompt

import (
	"errors"
	"fmt"
	"io"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/terminal"
)

// ErrNonInteractive is returned when a value is needed but nobody can type it.
var ErrNonInteractive = errors.New("prompt: no interactive terminal")

// Prompter is what the orchestrator and dispatcher ask the operator through.
type Prompter interface {
	// Confirm asks a yes/no question; false means declined.
	Confirm(question string) (bool, error)
	// Ask returns a new value for the store key described by def.
	Ask(def config.KeyDef, current string) (string, error)
	// Show displays an informational block such as a diff preview.
	Show(title string, body string) error
}

var isInteractive = terminal.IsInteractive

// New picks the prompter for this run. With assumeYes every confirmation is
// accepted; without a terminal every confirmation is declined.
func New(assumeYes bool, out io.Writer) Prompter {
	var base Prompter = Declining{Out: out}
	if isInteractive() {
		base = NewInteractive(NewHuhUI())
	}
	if assumeYes {
		return AssumeYes{Out: out, Inner: base}
	}
	return base
}

// Interactive prompts through a UI.
type Interactive struct {
	ui UI
}

// NewInteractive returns a prompter backed by ui.
func NewInteractive(ui UI) *Interactive {
	return &Interactive{ui: ui}
}

// Confirm asks question with a default of no.
func (p *Interactive) Confirm(question string) (bool, error) {
	value := false
	if err := p.ui.Confirm(question, &value); err != nil {
		return false, err
	}
	return value, nil
}

// Ask prompts for def. Placeholder values are not offered as the starting text.
func (p *Interactive) Ask(def config.KeyDef, current string) (string, error) {
	value := current
	if config.IsPlaceholder(def.Key, value) {
		value = ""
	}
	if value == "" {
		value = def.Default
	}
	title := fmt.Sprintf(messages.PromptKeyTitleFmt, def.Prompt, def.Key)

	var err error
	switch {
	case def.Key == config.KeyTargetKind:
		err = p.ui.Select(title, []string{string(config.TargetLocal), string(config.TargetCloud)}, &value)
	case def.Secret:
		err = p.ui.SecretInput(title, &value)
	default:
		err = p.ui.Input(title, &value)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Show renders body as a note.
func (p *Interactive) Show(title string, body string) error {
	return p.ui.Note(title, body)
}

// AssumeYes accepts every confirmation and delegates value prompts to Inner.
type AssumeYes struct {
	Out   io.Writer
	Inner Prompter
}

// Confirm records the question and accepts it.
func (p AssumeYes) Confirm(question string) (bool, error) {
	_, _ = fmt.Fprintf(p.Out, messages.PromptAutoAcceptedFmt, question)
	return true, nil
}

// Ask delegates to Inner, failing when there is none.
func (p AssumeYes) Ask(def config.KeyDef, current string) (string, error) {
	if p.Inner == nil {
		return "", ErrNonInteractive
	}
	return p.Inner.Ask(def, current)
}

// Show prints the block.
func (p AssumeYes) Show(title string, body string) error {
	return printBlock(p.Out, title, body)
}

// Declining refuses every confirmation and cannot collect values.
type Declining struct {
	Out io.Writer
}

// Confirm records the question and declines it.
func (p Declining) Confirm(question string) (bool, error) {
	_, _ = fmt.Fprintf(p.Out, messages.PromptAutoDeclinedFmt, question)
	return false, nil
}

// Ask always fails with ErrNonInteractive.
func (p Declining) Ask(config.KeyDef, string) (string, error) {
	return "", ErrNonInteractive
}

// Show prints the block.
func (p Declining) Show(title string, body string) error {
	return printBlock(p.Out, title, body)
}

func printBlock(out io.Writer, title string, body string) error {
	if out == nil {
		return nil
	}
	_, err := fmt.Fprintf(out, "%s\n%s", title, body)
	return err
}

// Funcs adapts optional callbacks into a Prompter.
type Funcs struct {
	ConfirmFunc func(question string) (bool, error)
	AskFunc     func(def config.KeyDef, current string) (string, error)
	ShowFunc    func(title string, body string) error
}

// Confirm calls ConfirmFunc. Returns an error if none is configured.
func (f Funcs) Confirm(question string) (bool, error) {
	if f.ConfirmFunc == nil {
		return false, fmt.Errorf(messages.PromptConfirmRequired)
	}
	return f.ConfirmFunc(question)
}

// Ask calls AskFunc. Returns an error if none is configured.
func (f Funcs) Ask(def config.KeyDef, current string) (string, error) {
	if f.AskFunc == nil {
		return "", fmt.Errorf(messages.PromptAskRequired)
	}
	return f.AskFunc(def, current)
}

// Show calls ShowFunc, or does nothing when none is configured.
func (f Funcs) Show(title string, body string) error {
	if f.ShowFunc == nil {
		return nil
	}
	return f.ShowFunc(title, body)
}
