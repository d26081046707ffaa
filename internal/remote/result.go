package remote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/messages"
)

// Result is the outcome of one remote check.
type Result struct {
	CheckName string
	Succeeded bool
	Output    string
	Err       error
}

// ConnectError reports that the command channel could not be established.
type ConnectError struct {
	Target  string
	Timeout bool
	Detail  string
	Err     error
}

func (e *ConnectError) Error() string {
	if e.Timeout {
		return fmt.Sprintf(messages.RemoteConnectTimeoutFmt, e.Target)
	}
	if e.Detail != "" {
		return fmt.Sprintf(messages.RemoteConnectFailedFmt, e.Target, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf(messages.RemoteConnectFailedFmt, e.Target, e.Err)
	}
	return fmt.Sprintf(messages.RemoteConnectFailedFmt, e.Target, "unknown error")
}

func (e *ConnectError) Unwrap() error { return e.Err }

// AuthError reports that the channel connected but the credentials were rejected.
type AuthError struct {
	Target string
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf(messages.RemoteAuthFailedFmt, e.Target, e.Detail)
}

// ExitError reports that the remote command ran and exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf(messages.RemoteExitWithStderrFmt, e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf(messages.RemoteExitFmt, e.Command, e.ExitCode)
}

// IsConnectivity reports whether err means the channel itself is unusable.
func IsConnectivity(err error) bool {
	var connectErr *ConnectError
	var authErr *AuthError
	return errors.As(err, &connectErr) || errors.As(err, &authErr)
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
