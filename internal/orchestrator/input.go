package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/prompt"
)

// ErrInputDeclined is returned when the operator does not accept the proposed store changes.
var ErrInputDeclined = errors.New("store changes declined")

// GuidedInput collects missing store values from the operator.
type GuidedInput interface {
	Collect(ctx context.Context, snap config.Snapshot, missing []string) error
}

// PromptInput asks for each missing key, previews the resulting store diff
// with secrets masked, and writes the values in one update after confirmation.
type PromptInput struct {
	Store    *config.Store
	Prompter prompt.Prompter
	// DiffMaxLines caps the preview; <= 0 uses prompt.DefaultDiffMaxLines.
	DiffMaxLines int
}

// Collect prompts for missing keys. When the target kind has never been
// chosen it is asked first and the missing set is recomputed for that kind.
// Esc on a prompt returns to the previous key; Esc on the first key aborts.
func (in *PromptInput) Collect(ctx context.Context, snap config.Snapshot, missing []string) error {
	defs := in.keysToAsk(snap, missing)
	updates := make(map[string]string, len(defs))

	for i := 0; i < len(defs); {
		if err := ctx.Err(); err != nil {
			return err
		}
		def := defs[i]
		current, ok := updates[def.Key]
		if !ok {
			current = snap.Get(def.Key, "")
		}
		value, err := in.Prompter.Ask(def, strings.TrimSpace(current))
		if errors.Is(err, prompt.ErrBack) {
			if i == 0 {
				return err
			}
			i--
			continue
		}
		if err != nil {
			return err
		}
		updates[def.Key] = strings.TrimSpace(value)

		if def.Key == config.KeyTargetKind {
			defs = append(defs[:i+1], in.missingFor(config.ParseTargetKind(updates[def.Key]), snap)...)
		}
		i++
	}
	if len(updates) == 0 {
		return nil
	}
	return in.confirmAndWrite(updates)
}

func (in *PromptInput) keysToAsk(snap config.Snapshot, missing []string) []config.KeyDef {
	var defs []config.KeyDef
	if snap.Get(config.KeyTargetKind, "") == "" {
		if def, ok := config.LookupKey(config.KeyTargetKind); ok {
			defs = append(defs, def)
		}
	}
	for _, key := range missing {
		if def, ok := config.LookupKey(key); ok {
			defs = append(defs, def)
		} else {
			defs = append(defs, config.KeyDef{Key: key, Prompt: key})
		}
	}
	return defs
}

func (in *PromptInput) missingFor(kind config.TargetKind, snap config.Snapshot) []config.KeyDef {
	_, missing := snap.ValidateRequired(config.RequiredFor(kind))
	defs := make([]config.KeyDef, 0, len(missing))
	for _, key := range missing {
		if def, ok := config.LookupKey(key); ok {
			defs = append(defs, def)
		}
	}
	return defs
}

func (in *PromptInput) confirmAndWrite(updates map[string]string) error {
	before, after, err := in.Store.Preview(updates)
	if err != nil {
		return err
	}
	if before == after {
		return nil
	}
	name := filepath.Base(in.Store.Path())
	diff, _ := prompt.Diff(name, config.RedactSecrets(before), config.RedactSecrets(after), in.DiffMaxLines)
	if err := in.Prompter.Show(fmt.Sprintf(messages.InputPreviewTitleFmt, in.Store.Path()), diff); err != nil {
		return err
	}
	ok, err := in.Prompter.Confirm(fmt.Sprintf(messages.InputConfirmWriteFmt, in.Store.Path()))
	if err != nil {
		return err
	}
	if !ok {
		return ErrInputDeclined
	}
	return in.Store.SetMany(updates)
}
