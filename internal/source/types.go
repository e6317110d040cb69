package source

import (
	"strings"
	"unicode"
)

// DocFlags encodes metadata about how a document was loaded.
type DocFlags uint8

const (
	// DocVirtual indicates the document was built from memory (test, stdin, etc.).
	DocVirtual DocFlags = 1 << iota // не с диска
	DocNormalizedNewlines
)

// Line is a single line of a Document without its terminator.
type Line struct {
	Raw     string // исходный текст строки
	Indent  string // ведущие пробелы
	Trimmed string // содержимое без пробелов по краям
}

// NewLine splits raw into its indentation prefix and trimmed content.
func NewLine(raw string) Line {
	rest := strings.TrimLeftFunc(raw, unicode.IsSpace)
	return Line{
		Raw:     raw,
		Indent:  raw[:len(raw)-len(rest)],
		Trimmed: strings.TrimRightFunc(rest, unicode.IsSpace),
	}
}

// Blank reports whether the line holds no text at all.
func (l Line) Blank() bool { return l.Raw == "" }

// Document is the full content of one file as an ordered list of lines.
// It is owned by a single formatting pass.
type Document struct {
	Path  string
	Lines []Line
	Hash  [32]byte // sha256 of the bytes the document was loaded from
	Flags DocFlags
}

// Strings returns the raw text of every line.
func (d *Document) Strings() []string {
	out := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = l.Raw
	}
	return out
}
