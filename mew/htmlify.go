package mew

import (
	"strings"
)

// SelfClosingElements never get an end tag
var SelfClosingElements = []string{
	"!DOCTYPE", "br", "hr", "meta", "area",
	"base", "col", "embed", "img", "input", "link",
	"param", "source", "track", "wbr", "command",
	"keygen", "menuitem",
}

// IsSelfClosing returns true if the tag is in the set of self-closing tags
func IsSelfClosing(tagName string) bool {
	for _, el := range SelfClosingElements {
		if tagName == el {
			return true
		}
	}
	return false
}

// ByteRenderer accumulates the generated HTML
type ByteRenderer struct {
	sb strings.Builder
}

// Render writes all the strings in order
func (br *ByteRenderer) Render(s ...string) {
	for _, str := range s {
		br.sb.WriteString(str)
	}
}

// String returns the accumulated HTML
func (br *ByteRenderer) String() string {
	return br.sb.String()
}

// Htmlify renders a forest of blocks, resolving presets on the way.
// depth is the nesting level of the blocks, used only for tracing.
func (c *Converter) Htmlify(blocks []*Block, depth int) (string, error) {
	br := &ByteRenderer{}
	for _, b := range blocks {
		if err := c.renderBlock(br, b, depth); err != nil {
			return "", err
		}
	}
	return br.String(), nil
}

// renderBlock renders a block and, recursively, its children
func (c *Converter) renderBlock(br *ByteRenderer, b *Block, depth int) error {

	// Literal blocks are written as they are
	if b.IsLiteral() {
		br.Render(b.Content)
		return nil
	}

	resolved, err := c.presets.Resolve(b)
	if err != nil {
		return err
	}

	// A transform may decide that nothing is rendered
	if resolved == nil {
		c.log.Debugw("preset removed block", "tag", b.Tag, "depth", depth)
		return nil
	}
	if resolved != b {
		c.log.Debugw("preset applied", "tag", b.Tag, "to", resolved.Tag, "depth", depth)
	}
	b = resolved

	br.Render("<", b.Tag)
	for _, a := range b.Attributes {
		if a.Valueless {
			br.Render(" ", a.Name)
			continue
		}
		br.Render(" ", a.Name, `="`, escapeAttribute(strings.Join(a.Values, " ")), `"`)
	}
	br.Render(">")

	br.Render(strings.TrimSpace(b.Content))

	inner, err := c.Htmlify(b.Children, depth+1)
	if err != nil {
		return err
	}
	br.Render(strings.TrimSpace(inner))

	// Void elements never have an end tag
	if !IsSelfClosing(b.Tag) {
		br.Render("</", b.Tag, ">")
	}

	return nil
}

var attributeEscaper = strings.NewReplacer(`"`, "&#34;")

// escapeAttribute makes the value safe inside a double-quoted attribute
func escapeAttribute(v string) string {
	return attributeEscaper.Replace(v)
}
