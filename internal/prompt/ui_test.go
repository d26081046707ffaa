package prompt

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRunForm(t *testing.T, fn func(*huh.Form) error) {
	t.Helper()
	orig := runFormFunc
	t.Cleanup(func() { runFormFunc = orig })
	runFormFunc = fn
}

func TestNewHuhUI(t *testing.T) {
	ui := NewHuhUI()
	assert.NotNil(t, ui)
	assert.NotNil(t, ui.isTerminal)
}

func TestHuhUI_NoTTY(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return false }}

	var s string
	var b bool
	assert.Error(t, ui.Select("Title", []string{"a", "b"}, &s))
	assert.Error(t, ui.Confirm("Title", &b))
	assert.Error(t, ui.Input("Title", &s))
	assert.Error(t, ui.SecretInput("Title", &s))
	err := ui.Note("Title", "Body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestHuhUI_RunFormSuccess(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return true }}
	called := false
	stubRunForm(t, func(form *huh.Form) error {
		assert.NotNil(t, form)
		called = true
		return nil
	})

	var res string
	assert.NoError(t, ui.Input("Title", &res))
	assert.True(t, called)
}

func TestHuhUI_AbortMapping(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return true }}

	stubRunForm(t, func(*huh.Form) error {
		ui.ctrlCAbort = true
		return huh.ErrUserAborted
	})
	var res string
	require.ErrorIs(t, ui.Input("First", &res), ErrCancelled)

	// The Ctrl+C flag must not leak into the next form.
	stubRunForm(t, func(*huh.Form) error { return huh.ErrUserAborted })
	assert.ErrorIs(t, ui.Input("Second", &res), ErrBack)
}

func TestFormFilter(t *testing.T) {
	ui := &HuhUI{}
	filter := ui.formFilter()

	msg := filter(nil, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.IsType(t, tea.WindowSizeMsg{}, msg)
	assert.False(t, ui.ctrlCAbort)

	msg = filter(nil, tea.InterruptMsg{})
	assert.IsType(t, tea.QuitMsg{}, msg)
	assert.False(t, ui.ctrlCAbort)

	msg = filter(nil, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.IsType(t, tea.KeyMsg{}, msg)
	assert.True(t, ui.ctrlCAbort)
}

func TestHintField_SurvivesFormConstruction(t *testing.T) {
	form := huh.NewForm(huh.NewGroup(
		newHintField(huh.NewInput().Title("Test")),
	))
	form.WithKeyMap(promptKeyMap())

	var hints []string
	for _, b := range form.KeyBinds() {
		if b.Enabled() {
			hints = append(hints, b.Help().Key+" "+b.Help().Desc)
		}
	}
	assert.Contains(t, hints, "esc back")
	assert.Contains(t, hints, "ctrl+c exit")
}

func TestHintField_UpdatePreservesWrapper(t *testing.T) {
	wrapped := newHintField(huh.NewInput().Title("Test"))
	model, _ := wrapped.Update(nil)
	_, ok := model.(*hintField)
	assert.True(t, ok)
}

func TestPromptKeyMap(t *testing.T) {
	km := promptKeyMap()
	assert.ElementsMatch(t, []string{"ctrl+c", "esc"}, km.Quit.Keys())
	assert.Equal(t, []string{"esc"}, km.Confirm.Prev.Keys())
	assert.Equal(t, []string{"ctrl+c"}, km.Input.Next.Keys())
	assert.False(t, km.Select.Filter.Enabled())
	assert.False(t, km.Select.SetFilter.Enabled())
	assert.False(t, km.Select.ClearFilter.Enabled())
	for _, b := range []key.Binding{km.Select.Prev, km.Confirm.Prev, km.Input.Prev, km.Note.Prev} {
		assert.Equal(t, "back", b.Help().Desc)
	}
	for _, b := range []key.Binding{km.Select.Next, km.Confirm.Next, km.Input.Next, km.Note.Next} {
		assert.Equal(t, "exit", b.Help().Desc)
	}
}

func TestHintField_WithPositionRestoresHints(t *testing.T) {
	// The zero position is both the first and the last field.
	field := newHintField(huh.NewConfirm().Title("Test")).WithPosition(huh.FieldPosition{})

	var hints []string
	for _, b := range field.KeyBinds() {
		if b.Enabled() {
			hints = append(hints, b.Help().Desc)
		}
	}
	assert.Contains(t, hints, "back")
	assert.Contains(t, hints, "exit")
}

func TestHuhUI_SelectBuildsForm(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return true }}
	var forms []*huh.Form
	stubRunForm(t, func(form *huh.Form) error {
		forms = append(forms, form)
		return nil
	})

	current := "b"
	require.NoError(t, ui.Select("Kind", []string{"a", "b"}, &current))
	assert.Len(t, forms, 1)
	assert.Equal(t, "b", current)
}
