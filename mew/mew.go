// Package mew converts documents written in an indentation-based markup into HTML.
//
// Each non-blank line is an element: the first word holds the tag and the attribute
// shortcuts, the rest of the line is the content, and the more indented lines that
// follow are its children:
//
//	doctype
//	html
//	  head
//	    charset utf-8
//	    css style.css
//	  body
//	    $who = "World"
//	    div.header#main
//	      p Hello {{ who }}
//	      a(target="_blank") https://example.com Click here
//
// Tags that match a preset (doctype, charset, css, a, img, viewport and any preset
// supplied by the caller) are replaced by the preset output before rendering.
package mew

import (
	"go.uber.org/zap"
)

// Converter renders documents with a fixed set of presets and initial variables.
// It is not modified by Render, so it can be used concurrently.
type Converter struct {
	presets   *PresetTable
	variables map[string]string
	sigils    []Sigil
	strict    bool
	log       *zap.SugaredLogger
}

// Option configures a Converter
type Option func(*Converter)

// WithLogger sets the logger used for tracing
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithVariables sets the initial value of the variables of every document
func WithVariables(vars map[string]string) Option {
	return func(c *Converter) {
		for k, v := range vars {
			c.variables[k] = v
		}
	}
}

// WithPresets appends caller presets after the built-in ones
func WithPresets(specs ...PresetSpec) Option {
	return func(c *Converter) {
		for _, s := range specs {
			c.presets.Add(s.Compile())
		}
	}
}

// WithStrictVariables makes placeholders of unset variables an error
func WithStrictVariables(strict bool) Option {
	return func(c *Converter) {
		c.strict = strict
	}
}

// WithSigils replaces the table of attribute shortcuts
func WithSigils(sigils []Sigil) Option {
	return func(c *Converter) {
		c.sigils = sigils
	}
}

// New returns a converter with the built-in presets and the given options
func New(opts ...Option) *Converter {
	c := &Converter{
		presets:   NewPresetTable(),
		variables: make(map[string]string),
		sigils:    DefaultSigils,
		log:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Presets returns the preset table of the converter
func (c *Converter) Presets() *PresetTable {
	return c.presets
}

// Parse builds the tree of blocks of the document, with its own variable store
func (c *Converter) Parse(src string) ([]*Block, *Variables, error) {
	vars := NewVariables(c.variables)
	p := NewParser(vars, c.log, c.sigils)
	p.Strict = c.strict
	blocks, err := p.Parse(src)
	if err != nil {
		return nil, nil, err
	}
	return blocks, vars, nil
}

// Render converts the document to HTML.
// Variables assigned in the document are only visible to this call.
func (c *Converter) Render(src string) (string, error) {
	blocks, vars, err := c.Parse(src)
	if err != nil {
		return "", err
	}

	html, err := c.Htmlify(blocks, 0)
	if err != nil {
		return "", err
	}

	c.log.Debugw("rendered document", "blocks", len(blocks), "variables", vars.Len(), "bytes", len(html))
	return html, nil
}

// Render converts the document to HTML with a converter built from the options
func Render(src string, opts ...Option) (string, error) {
	return New(opts...).Render(src)
}
