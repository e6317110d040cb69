package format

import (
	"bytes"
	"strings"

	"bracefmt/internal/source"
)

// Source runs the full pipeline over text and returns Allman-styled output
// ending in exactly one newline. Text without any non-blank line formats to
// the empty string.
func Source(text string, opts Options) string {
	opts = opts.withDefaults()
	return string(join(Reflow(source.SplitLines(Normalize(text, opts.TabWidth)))))
}

// Bytes formats content and reports whether the result differs from it.
func Bytes(content []byte, opts Options) (formatted []byte, changed bool) {
	formatted = []byte(Source(string(content), opts))
	return formatted, !bytes.Equal(content, formatted)
}

// Document formats doc and returns the formatted bytes.
func Document(doc *source.Document, opts Options) []byte {
	opts = opts.withDefaults()
	raw := doc.Strings()
	for i, l := range raw {
		raw[i] = expandTabs(l, opts.TabWidth)
	}
	return join(Reflow(raw))
}

func join(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}
