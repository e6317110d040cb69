package source

import (
	"path/filepath"
	"slices"
	"strings"
)

// normalizeNewlines заменяет \r\n и одиночные \r на \n.
// Возвращает новый слайс и флаг: были ли замены.
func normalizeNewlines(content []byte) ([]byte, bool) {
	// Быстрый путь: если нет \r, возвращаем как есть.
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	i := 0
	for i < len(content) {
		if content[i] != '\r' {
			out = append(out, content[i])
			i++
			continue
		}
		out = append(out, '\n')
		if i+1 < len(content) && content[i+1] == '\n' {
			i += 2
		} else {
			i++
		}
	}
	return out, true
}

// NormalizeNewlines converts every \r\n and lone \r in text to \n.
func NormalizeNewlines(text string) string {
	out, changed := normalizeNewlines([]byte(text))
	if !changed {
		return text
	}
	return string(out)
}

// SplitLines splits newline-normalized text into lines. A trailing newline
// does not produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
