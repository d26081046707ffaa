package prompt

import (
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/conn-castle/agent-deploy/internal/messages"
)

// DefaultDiffMaxLines caps how many diff lines a preview shows.
const DefaultDiffMaxLines = 40

// Diff renders a unified diff of before and after for name.
// The result is truncated to maxLines (DefaultDiffMaxLines when <= 0) and the
// boolean reports whether truncation happened. Identical inputs yield "".
func Diff(name string, before string, after string, maxLines int) (string, bool) {
	limit := maxLines
	if limit <= 0 {
		limit = DefaultDiffMaxLines
	}
	diff := udiff.Unified(name+" (current)", name+" (proposed)", before, after)
	lines := splitDiffLines(diff)
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := append(lines[:limit:limit], fmt.Sprintf(messages.PromptDiffTruncatedFmt, limit))
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" || strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
