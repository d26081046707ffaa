package remote

import "strings"

// Command is a remote program and its argument list.
// Commands are rendered with every argument quoted for the remote shell, so
// configuration values can never alter the command structure.
type Command struct {
	Program string
	Args    []string
}

// Cmd builds a Command.
func Cmd(program string, args ...string) Command {
	return Command{Program: program, Args: append([]string(nil), args...)}
}

// Sudo wraps a command with non-interactive sudo.
func Sudo(cmd Command) Command {
	return Cmd("sudo", append([]string{"-n", cmd.Program}, cmd.Args...)...)
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Program}, c.Args...)
}

// String renders the command for a POSIX shell.
func (c Command) String() string {
	argv := c.Argv()
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = Quote(arg)
	}
	return strings.Join(quoted, " ")
}

// Quote returns arg quoted for a POSIX shell. Arguments made only of safe
// characters are returned unchanged.
func Quote(arg string) string {
	if arg == "" {
		return "''"
	}
	if isShellSafe(arg) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func isShellSafe(arg string) bool {
	for _, r := range arg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("@%_+=:,./-", r):
		default:
			return false
		}
	}
	return true
}
