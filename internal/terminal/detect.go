// Package terminal decides whether agd may prompt the operator.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// fdFile is the part of *os.File the check needs.
type fdFile interface {
	Fd() uintptr
}

var isTerminal = term.IsTerminal

// IsInteractive reports whether stdin and stdout are both terminals. Prompts
// are only shown when it is true; otherwise confirmations are declined.
func IsInteractive() bool {
	return allTerminals(os.Stdin, os.Stdout)
}

func allTerminals(files ...fdFile) bool {
	for _, f := range files {
		if f == nil || !isTerminal(int(f.Fd())) {
			return false
		}
	}
	return len(files) > 0
}
