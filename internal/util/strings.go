// Package util holds small string helpers shared by the rendering code.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateString truncates s to maxLen runes, appending "..." when it
// had to cut. It counts runes, not columns, and knows nothing about
// escape sequences; styled terminal output goes through TruncateANSI.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// TruncateANSI truncates s to maxWidth visual columns, appending "..."
// when it had to cut. Escape sequences and wide characters are measured
// correctly, so styled segments survive intact.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail toward the final width.
	return ansi.Truncate(s, maxWidth, "...")
}
