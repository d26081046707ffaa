package collaborators

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remote"
)

// Handoff opens an interactive ssh session on the target.
type Handoff struct {
	Binary string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewHandoff returns a handoff attached to the process stdio.
func NewHandoff() *Handoff {
	return &Handoff{Binary: "ssh", Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Args returns the ssh arguments for an interactive session on target.
// flags, when present, are run as the remote command.
func (h *Handoff) Args(target remote.Target, flags []string) []string {
	args := []string{"-t"}
	if target.Port != 0 && target.Port != remote.DefaultSSHPort {
		args = append(args, "-p", strconv.Itoa(target.Port))
	}
	if target.IdentityFile != "" {
		args = append(args, "-i", target.IdentityFile)
	}
	args = append(args, target.Destination())
	if len(flags) > 0 {
		args = append(args, "--")
		args = append(args, flags...)
	}
	return args
}

// Invoke blocks until the operator leaves the session.
func (h *Handoff) Invoke(ctx context.Context, target remote.Target, flags []string) error {
	cmd := commandContext(ctx, h.Binary, h.Args(target, flags)...)
	cmd.Stdin = h.Stdin
	cmd.Stdout = h.Stdout
	cmd.Stderr = h.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(messages.CollabHandoffFailedFmt, target, err)
	}
	return nil
}
