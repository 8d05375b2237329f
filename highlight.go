package main

import (
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-isatty"
)

// defaultStyle is the chroma style for terminal output
const defaultStyle = "swapoff"

// isTerminal reports whether w is a terminal we can send colour codes to
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeHighlighted writes the HTML to w with terminal colour codes
func writeHighlighted(w io.Writer, html string, styleName string) error {

	// Determine lexer
	l := lexers.Get("html")
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	s := styles.Get(styleName)

	f := formatters.Get("terminal256")
	if f == nil {
		f = formatters.Fallback
	}

	it, err := l.Tokenise(nil, html)
	if err != nil {
		return err
	}
	return f.Format(w, s, it)
}
