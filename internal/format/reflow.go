package format

import (
	"strings"
	"unicode"

	"bracefmt/internal/source"
)

// Reflow moves braces onto their own lines. Input lines must already be
// normalized (no tabs, no \r). The result has runs of blank lines collapsed
// and no trailing blank lines.
func Reflow(lines []string) []string {
	out := make([]string, 0, len(lines)+len(lines)/4)
	for i, raw := range lines {
		var line source.Line
		line, out = splitClosing(source.NewLine(raw), out)
		out = splitOpening(line, nextIsBareOpen(lines, i), out)
	}
	return collapseBlankRuns(out)
}

// splitClosing emits a bare `}` for every leading closing brace that has
// more text after it and returns what is left of the line. `} } else {`
// yields two `}` lines so a second pass has nothing left to split.
func splitClosing(line source.Line, out []string) (source.Line, []string) {
	for len(line.Trimmed) > 1 && line.Trimmed[0] == '}' {
		out = append(out, line.Indent+"}")
		line = source.NewLine(line.Indent + strings.TrimSpace(line.Trimmed[1:]))
	}
	return line, out
}

// splitOpening moves a trailing `{` onto the next line at the same indent.
// A line followed by a bare `{` is left alone.
func splitOpening(line source.Line, nextBareOpen bool, out []string) []string {
	if nextBareOpen || line.Trimmed == "{" || !strings.HasSuffix(line.Trimmed, "{") {
		return append(out, line.Raw)
	}
	head := strings.TrimRightFunc(strings.TrimSuffix(line.Trimmed, "{"), unicode.IsSpace)
	return append(out, line.Indent+head, line.Indent+"{")
}

func nextIsBareOpen(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	return strings.TrimSpace(lines[i+1]) == "{"
}

// collapseBlankRuns keeps at most one blank line in a row and drops
// trailing blank lines.
func collapseBlankRuns(lines []string) []string {
	out := lines[:0]
	prevBlank := false
	for _, l := range lines {
		blank := l == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, l)
		prevBlank = blank
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
