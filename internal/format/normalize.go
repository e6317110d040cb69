package format

import (
	"strings"

	"bracefmt/internal/source"
)

// Normalize unifies line endings to \n and expands every tab into tabWidth
// spaces. A non-positive tabWidth falls back to DefaultTabWidth.
func Normalize(text string, tabWidth int) string {
	return expandTabs(source.NormalizeNewlines(text), tabWidth)
}

func expandTabs(text string, tabWidth int) string {
	if !strings.Contains(text, "\t") {
		return text
	}
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	return strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))
}
