package mew

import (
	"strings"
)

// A TransformFunc derives the replacement block from the fresh copy of a preset
// template (newBlock) and the block written by the author (original).
type TransformFunc func(newBlock, original *Block) (*Block, error)

// identity is the default transform, returning the template copy unchanged
func identity(newBlock, _ *Block) (*Block, error) {
	return newBlock, nil
}

// Preset is a macro: blocks whose tag is Tag are replaced by a copy of Template,
// which is then passed through Transform.
type Preset struct {
	Tag       string
	Template  *Block
	Transform TransformFunc
}

// NewPreset returns a preset, using the identity transform if transform is nil
func NewPreset(tag string, template *Block, transform TransformFunc) Preset {
	if template == nil {
		template = NewBlock()
	}
	if transform == nil {
		transform = identity
	}
	return Preset{Tag: tag, Template: template, Transform: transform}
}

// Apply replaces the block by a fresh copy of the template and runs the transform
func (p Preset) Apply(b *Block) (*Block, error) {
	newBlock := p.Template.Clone()
	newBlock.Line = b.Line
	return p.Transform(newBlock, b)
}

// ElementSpec is the declarative shape of a preset template
type ElementSpec struct {
	Tag        string
	Attributes Attributes
	Content    string
}

// PresetSpec is a preset as supplied by a caller, usually from configuration
type PresetSpec struct {
	Tag       string
	Element   ElementSpec
	Transform TransformFunc
}

// Compile builds the preset described by s
func (s PresetSpec) Compile() Preset {
	tag := s.Element.Tag
	if len(tag) == 0 {
		tag = DefaultTag
	}
	template := &Block{
		Tag:        tag,
		Attributes: s.Element.Attributes.Clone(),
		Content:    s.Element.Content,
	}
	return NewPreset(s.Tag, template, s.Transform)
}

// PresetTable is the ordered list of presets.
// When several presets have the same tag, all of them run and the last one registered wins.
type PresetTable struct {
	presets []Preset
}

// NewPresetTable returns a table with the built-in presets followed by the caller presets
func NewPresetTable(specs ...PresetSpec) *PresetTable {
	t := &PresetTable{presets: BuiltinPresets()}
	for _, s := range specs {
		t.Add(s.Compile())
	}
	return t
}

// Add appends a preset, overriding the output of any previous preset with the same tag
func (t *PresetTable) Add(p Preset) {
	t.presets = append(t.presets, p)
}

// Len returns the number of registered presets
func (t *PresetTable) Len() int {
	return len(t.presets)
}

// Matching returns the presets whose tag matches, in registration order
func (t *PresetTable) Matching(tag string) []Preset {
	var found []Preset
	for _, p := range t.presets {
		if p.Tag == tag {
			found = append(found, p)
		}
	}
	return found
}

// Resolve returns the block that must be rendered in place of b.
// Every matching preset is applied to the original block, in order, and the
// output of the last one is kept. The first error of any of them is returned.
// Blocks without a matching preset are returned unchanged.
func (t *PresetTable) Resolve(b *Block) (*Block, error) {
	resolved := b
	for _, p := range t.Matching(b.Tag) {
		out, err := p.Apply(b)
		if err != nil {
			return nil, err
		}
		resolved = out
	}
	return resolved, nil
}

// BuiltinPresets returns a fresh copy of the built-in presets
func BuiltinPresets() []Preset {
	return []Preset{
		NewPreset("doctype", &Block{
			Tag:        "!DOCTYPE",
			Attributes: Attributes{{Name: "html", Valueless: true}},
		}, nil),

		NewPreset("charset", &Block{Tag: "meta"}, ContentToAttribute("charset")),

		NewPreset("css", &Block{
			Tag:        "link",
			Attributes: Attributes{{Name: "rel", Values: []string{"stylesheet"}}},
		}, ContentToAttribute("href")),

		NewPreset("a", &Block{Tag: "a"}, transformLink),

		NewPreset("img", &Block{Tag: "img"}, transformImage),

		NewPreset("viewport", &Block{
			Tag: "meta",
			Attributes: Attributes{
				{Name: "name", Values: []string{"viewport"}},
				{Name: "content", Values: []string{
					"width=device-width,",
					"user-scalable=no,",
					"initial-scale=$size$,",
					"maximum-scale=$size$,",
					"minimum-scale=$size$",
				}},
			},
		}, ReplaceInAttribute("content", "$size$", "1.0")),
	}
}

// ContentToAttribute returns a transform which copies the content of the original block
// into the named attribute.
func ContentToAttribute(name string) TransformFunc {
	return func(newBlock, original *Block) (*Block, error) {
		newBlock.Attributes.Set(name, original.Content)
		return newBlock, nil
	}
}

// ReplaceInAttribute returns a transform which replaces every occurrence of search
// in the values of the named attribute by the content of the original block,
// or by def when that content is empty.
func ReplaceInAttribute(name, search, def string) TransformFunc {
	return func(newBlock, original *Block) (*Block, error) {
		value := strings.TrimSpace(original.Content)
		if len(value) == 0 {
			value = def
		}
		newBlock.Attributes.Replace(name, search, value)
		return newBlock, nil
	}
}

// mergeAttributes adds the attributes of the original block over the template ones
func mergeAttributes(newBlock, original *Block) {
	for _, a := range original.Attributes {
		if a.Valueless {
			newBlock.Attributes.SetValueless(a.Name)
		} else {
			newBlock.Attributes.Set(a.Name, a.Values...)
		}
	}
}

// transformLink implements 'a URL text...'
func transformLink(newBlock, original *Block) (*Block, error) {
	words := strings.Fields(original.Content)
	if len(words) < 2 {
		return nil, &Error{
			Kind:     PresetArityError,
			Tag:      original.Tag,
			Line:     original.Line,
			Expected: 2,
			Actual:   len(words),
		}
	}

	mergeAttributes(newBlock, original)
	newBlock.Attributes.Set("href", words[0])
	newBlock.Content = strings.Join(words[1:], " ")
	return newBlock, nil
}

// transformImage implements 'img SRC [alt text...]'
func transformImage(newBlock, original *Block) (*Block, error) {
	words := strings.Fields(original.Content)

	mergeAttributes(newBlock, original)

	src := ""
	if len(words) > 0 {
		src = words[0]
	}
	newBlock.Attributes.Set("src", src)

	if len(words) >= 2 {
		newBlock.Attributes.Set("alt", strings.Join(words[1:], " "))
	}
	return newBlock, nil
}

// Rewrite describes a preset transform without code, so presets can be
// declared in configuration files.
type Rewrite struct {
	// KeepAttributes copies the attributes of the original block over the template ones
	KeepAttributes bool
	// KeepContent uses the content of the original block as content
	KeepContent bool
	// KeepChildren moves the children of the original block to the new one
	KeepChildren bool
	// ContentAttr, if set, receives the content of the original block
	ContentAttr string
	// ReplaceAttr, if set, has every ReplaceSearch in its values replaced by the original content
	ReplaceAttr   string
	ReplaceSearch string
}

// IsZero reports whether the rewrite does nothing
func (r Rewrite) IsZero() bool {
	return r == Rewrite{}
}

// Transform returns the transform function for the rewrite
func (r Rewrite) Transform() TransformFunc {
	if r.IsZero() {
		return identity
	}
	return func(newBlock, original *Block) (*Block, error) {
		if r.KeepAttributes {
			mergeAttributes(newBlock, original)
		}
		if r.KeepContent {
			newBlock.Content = original.Content
		}
		if r.KeepChildren {
			newBlock.Children = append(newBlock.Children, original.Children...)
		}
		if len(r.ContentAttr) > 0 {
			newBlock.Attributes.Set(r.ContentAttr, original.Content)
		}
		if len(r.ReplaceAttr) > 0 && len(r.ReplaceSearch) > 0 {
			newBlock.Attributes.Replace(r.ReplaceAttr, r.ReplaceSearch, strings.TrimSpace(original.Content))
		}
		return newBlock, nil
	}
}
