// Package pretty re-indents HTML, writing one node per line.
package pretty

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hesusruiz/mew/mew"
	"golang.org/x/net/html"
)

// ErrTokenize is returned when the input can not be tokenized
var ErrTokenize = errors.New("failed to tokenize HTML")

// The content of these elements is written exactly as it is
var rawElements = []string{"pre", "textarea", "script", "style"}

func isRaw(tagName string) bool {
	for _, el := range rawElements {
		if tagName == el {
			return true
		}
	}
	return false
}

type printer struct {
	sb     strings.Builder
	indent string
	maxBuf int
}

// Option configures Format
type Option func(*printer)

// WithIndent sets the number of spaces per nesting level
func WithIndent(n int) Option {
	return func(p *printer) {
		if n >= 0 {
			p.indent = strings.Repeat(" ", n)
		}
	}
}

// WithMaxBuf limits the size of a single token, see html.Tokenizer.SetMaxBuf
func WithMaxBuf(n int) Option {
	return func(p *printer) {
		p.maxBuf = n
	}
}

func (p *printer) line(depth int, s string) {
	p.sb.WriteString(strings.Repeat(p.indent, depth))
	p.sb.WriteString(s)
	p.sb.WriteByte('\n')
}

// Format writes each tag, text and comment of src on its own line, indented by depth.
// Self-closing elements do not increase the depth.
func Format(src string, opts ...Option) (string, error) {
	p := &printer{indent: "    "}
	for _, opt := range opts {
		opt(p)
	}

	z := html.NewTokenizer(strings.NewReader(src))
	if p.maxBuf > 0 {
		z.SetMaxBuf(p.maxBuf)
	}

	depth := 0

	// Inside a raw element we copy the input until its end tag
	rawName := ""
	rawDepth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return p.sb.String(), nil
			}
			return "", fmt.Errorf("%w: %v", ErrTokenize, z.Err())
		}

		raw := string(z.Raw())
		name, _ := z.TagName()
		tagName := string(name)

		if rawDepth > 0 {
			switch {
			case tt == html.StartTagToken && tagName == rawName:
				rawDepth++
			case tt == html.EndTagToken && tagName == rawName:
				rawDepth--
			}
			p.sb.WriteString(raw)
			if rawDepth == 0 {
				p.sb.WriteByte('\n')
			}
			continue
		}

		switch tt {
		case html.TextToken:
			text := strings.TrimSpace(raw)
			if len(text) > 0 {
				p.line(depth, text)
			}

		case html.StartTagToken:
			if isRaw(tagName) {
				p.sb.WriteString(strings.Repeat(p.indent, depth))
				p.sb.WriteString(raw)
				rawName = tagName
				rawDepth = 1
				continue
			}
			p.line(depth, raw)
			if !mew.IsSelfClosing(tagName) {
				depth++
			}

		case html.EndTagToken:
			if depth > 0 {
				depth--
			}
			p.line(depth, raw)

		case html.SelfClosingTagToken, html.DoctypeToken, html.CommentToken:
			p.line(depth, raw)
		}
	}
}
