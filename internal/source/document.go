package source

import (
	"crypto/sha256"
	"os"
)

// NewDocument builds a Document from in-memory content.
func NewDocument(path string, content []byte) *Document {
	return newDocument(path, content, DocVirtual)
}

// Load reads a file from disk and builds a Document from it.
func Load(path string) (*Document, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newDocument(path, content, 0), nil
}

func newDocument(path string, content []byte, flags DocFlags) *Document {
	hash := sha256.Sum256(content)
	normalized, changed := normalizeNewlines(content)
	if changed {
		flags |= DocNormalizedNewlines
	}
	raw := SplitLines(string(normalized))
	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = NewLine(r)
	}
	return &Document{
		Path:  normalizePath(path),
		Lines: lines,
		Hash:  hash,
		Flags: flags,
	}
}
