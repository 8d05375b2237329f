package mew

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Line is one non-blank source line with its indentation
type Line struct {
	Text        string
	Indentation int
}

// Trimmed returns the text of the line without surrounding whitespace
func (l Line) Trimmed() string {
	return strings.TrimSpace(l.Text)
}

// NormalizeLines splits the source in lines, strips the line terminators and
// drops the blank lines. Indentation is the number of leading whitespace characters.
func NormalizeLines(src string) []Line {
	var lines []Line

	// Any of "\r\n", "\n" or "\r" ends a line
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")

	for _, raw := range strings.Split(src, "\n") {
		if len(strings.TrimSpace(raw)) == 0 {
			continue
		}
		lines = append(lines, Line{Text: raw, Indentation: indentation(raw)})
	}

	return lines
}

// indentation counts the leading whitespace characters of the line
func indentation(s string) int {
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	return utf8.RuneCountInString(s[:len(s)-len(rest)])
}
