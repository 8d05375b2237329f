// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache-2.0
// license that can be found in the LICENSE file.

// Package sliceedit extends the functionalities of rsc.io/edit to
// queue edits against an immutable string and apply them in a single pass.
// Offsets always refer to the original text, so replacements never
// see the result of previous replacements.
package sliceedit

import (
	"strings"

	"rsc.io/edit"
)

// A Buffer is a queue of edits to apply to a given text.
type Buffer struct {
	ed    *edit.Buffer
	text  string
	edits int
}

// NewBuffer returns a new buffer to accumulate changes to an initial text.
func NewBuffer(text string) *Buffer {
	return &Buffer{
		ed:   edit.NewBuffer([]byte(text)),
		text: text,
	}
}

// FindAll finds all non-overlapping instances of item in text,
// returning their starting offsets.
func FindAll(text string, item string) []int {
	found := []int{}

	if len(item) == 0 {
		return found
	}

	realOffset := 0

	for {
		i := strings.Index(text, item)
		if i == -1 {
			return found
		}
		found = append(found, i+realOffset)
		text = text[i+len(item):]
		realOffset = realOffset + i + len(item)
	}
}

// Replace replaces the original text in [start, end) with new.
// Queued edits must not overlap.
func (b *Buffer) Replace(start, end int, new string) {
	b.ed.Replace(start, end, new)
	b.edits++
}

// ReplaceAllString replaces every instance of old in the original text with new.
func (b *Buffer) ReplaceAllString(old string, new string) {
	for _, hit := range FindAll(b.text, old) {
		b.Replace(hit, hit+len(old), new)
	}
}

// Len returns the number of queued edits.
func (b *Buffer) Len() int {
	return b.edits
}

// String returns the original text with the queued edits applied.
func (b *Buffer) String() string {
	if b.edits == 0 {
		return b.text
	}
	return b.ed.String()
}
