package mew

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPresets(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Block
	}{
		{
			name: "doctype",
			want: &Block{Tag: "!DOCTYPE", Attributes: Attributes{{Name: "html", Valueless: true}}},
		},
		{
			name:    "charset",
			content: "utf-8",
			want:    &Block{Tag: "meta", Attributes: Attributes{{Name: "charset", Values: []string{"utf-8"}}}},
		},
		{
			name:    "css",
			content: "style.css",
			want: &Block{Tag: "link", Attributes: Attributes{
				{Name: "rel", Values: []string{"stylesheet"}},
				{Name: "href", Values: []string{"style.css"}},
			}},
		},
		{
			name:    "a",
			content: "https://example.com Click here",
			want: &Block{Tag: "a", Content: "Click here", Attributes: Attributes{
				{Name: "href", Values: []string{"https://example.com"}},
			}},
		},
		{
			name:    "img",
			content: "cat.png A cat",
			want: &Block{Tag: "img", Attributes: Attributes{
				{Name: "src", Values: []string{"cat.png"}},
				{Name: "alt", Values: []string{"A cat"}},
			}},
		},
	}
	table := NewPresetTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Resolve(&Block{Tag: tt.name, Content: tt.content})
			require.NoError(t, err)
			assert.Equal(t, tt.want.Tag, got.Tag)
			assert.Equal(t, tt.want.Content, got.Content)
			assert.Equal(t, tt.want.Attributes, got.Attributes)
		})
	}
}

func TestViewportPreset(t *testing.T) {
	table := NewPresetTable()

	got, err := table.Resolve(&Block{Tag: "viewport"})
	require.NoError(t, err)
	content, ok := got.Attributes.Get("content")
	require.True(t, ok)
	assert.Equal(t, []string{
		"width=device-width,",
		"user-scalable=no,",
		"initial-scale=1.0,",
		"maximum-scale=1.0,",
		"minimum-scale=1.0",
	}, content.Values)

	got, err = table.Resolve(&Block{Tag: "viewport", Content: "2.0"})
	require.NoError(t, err)
	content, _ = got.Attributes.Get("content")
	assert.Contains(t, content.Values, "initial-scale=2.0,")
	assert.Contains(t, content.Values, "minimum-scale=2.0")
}

func TestLinkPresetArity(t *testing.T) {
	tests := []struct {
		content string
		actual  int
	}{
		{content: "", actual: 0},
		{content: "https://example.com", actual: 1},
	}
	table := NewPresetTable()
	for _, tt := range tests {
		_, err := table.Resolve(&Block{Tag: "a", Content: tt.content, Line: "a " + tt.content})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPresetArity))

		var mewErr *Error
		require.True(t, errors.As(err, &mewErr))
		assert.Equal(t, "a", mewErr.Tag)
		assert.Equal(t, 2, mewErr.Expected)
		assert.Equal(t, tt.actual, mewErr.Actual)
	}
}

func TestPresetsKeepOriginalAttributes(t *testing.T) {
	table := NewPresetTable()

	got, err := table.Resolve(&Block{
		Tag:        "a",
		Content:    "/home Home",
		Attributes: Attributes{{Name: "class", Values: []string{"nav"}}, {Name: "href", Values: []string{"/old"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, Attributes{
		{Name: "class", Values: []string{"nav"}},
		{Name: "href", Values: []string{"/home"}},
	}, got.Attributes)

	got, err = table.Resolve(&Block{
		Tag:        "img",
		Content:    "logo.png",
		Attributes: Attributes{{Name: "width", Values: []string{"10"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, Attributes{
		{Name: "width", Values: []string{"10"}},
		{Name: "src", Values: []string{"logo.png"}},
	}, got.Attributes)
}

func TestPresetTemplateIsNotModified(t *testing.T) {
	table := NewPresetTable()

	for _, cs := range []string{"utf-8", "latin1"} {
		got, err := table.Resolve(&Block{Tag: "charset", Content: cs})
		require.NoError(t, err)
		v, _ := got.Attributes.Get("charset")
		assert.Equal(t, []string{cs}, v.Values)
	}

	charset := table.Matching("charset")
	require.Len(t, charset, 1)
	assert.False(t, charset[0].Template.Attributes.Has("charset"))

	viewport := table.Matching("viewport")
	require.Len(t, viewport, 1)
	v, _ := viewport[0].Template.Attributes.Get("content")
	assert.Contains(t, v.Values, "initial-scale=$size$,")
}

func TestUserPresetsOverrideBuiltins(t *testing.T) {
	table := NewPresetTable(PresetSpec{
		Tag:     "a",
		Element: ElementSpec{Tag: "span"},
	})
	require.Len(t, table.Matching("a"), 2)

	// The output of the last matching preset is rendered
	got, err := table.Resolve(&Block{Tag: "a", Content: "/home Home"})
	require.NoError(t, err)
	assert.Equal(t, "span", got.Tag)
	assert.Empty(t, got.Content)

	table.Add(NewPreset("a", &Block{Tag: "em"}, nil))
	got, err = table.Resolve(&Block{Tag: "a", Content: "/home Home"})
	require.NoError(t, err)
	assert.Equal(t, "em", got.Tag)
}

func TestUserPresetsKeepBuiltinChecks(t *testing.T) {
	table := NewPresetTable(PresetSpec{
		Tag:     "a",
		Element: ElementSpec{Tag: "a"},
	})

	// Every matching preset runs, so the built-in link still checks its arguments
	_, err := table.Resolve(&Block{Tag: "a", Content: "onlyoneword", Line: "a onlyoneword"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPresetArity))
}

func TestPresetsRunInOrder(t *testing.T) {
	var seen []string
	record := func(name string) TransformFunc {
		return func(newBlock, original *Block) (*Block, error) {
			seen = append(seen, name)
			assert.Equal(t, "x", original.Tag)
			return newBlock, nil
		}
	}

	table := NewPresetTable(
		PresetSpec{Tag: "x", Element: ElementSpec{Tag: "first"}, Transform: record("first")},
		PresetSpec{Tag: "y", Element: ElementSpec{Tag: "other"}, Transform: record("other")},
		PresetSpec{Tag: "x", Element: ElementSpec{Tag: "second"}, Transform: record("second")},
	)

	got, err := table.Resolve(&Block{Tag: "x"})
	require.NoError(t, err)
	assert.Equal(t, "second", got.Tag)
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestPresetWithoutMatch(t *testing.T) {
	table := NewPresetTable()
	b := &Block{Tag: "section"}

	got, err := table.Resolve(b)
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestRewrite(t *testing.T) {
	original := &Block{
		Tag:        "fa",
		Content:    "home",
		Attributes: Attributes{{Name: "id", Values: []string{"i1"}}},
		Children:   []*Block{{Tag: "span"}},
	}
	template := ElementSpec{
		Tag:        "i",
		Attributes: Attributes{{Name: "class", Values: []string{"fa-icons"}}},
	}

	tests := []struct {
		name    string
		rewrite Rewrite
		want    *Block
	}{
		{
			name:    "Zero rewrite keeps only the template",
			rewrite: Rewrite{},
			want:    &Block{Tag: "i", Attributes: Attributes{{Name: "class", Values: []string{"fa-icons"}}}},
		},
		{
			name:    "Content to attribute",
			rewrite: Rewrite{ContentAttr: "title"},
			want: &Block{Tag: "i", Attributes: Attributes{
				{Name: "class", Values: []string{"fa-icons"}},
				{Name: "title", Values: []string{"home"}},
			}},
		},
		{
			name:    "Replace in attribute",
			rewrite: Rewrite{ReplaceAttr: "class", ReplaceSearch: "icons"},
			want:    &Block{Tag: "i", Attributes: Attributes{{Name: "class", Values: []string{"fa-home"}}}},
		},
		{
			name:    "Keep everything",
			rewrite: Rewrite{KeepAttributes: true, KeepContent: true, KeepChildren: true},
			want: &Block{
				Tag:     "i",
				Content: "home",
				Attributes: Attributes{
					{Name: "class", Values: []string{"fa-icons"}},
					{Name: "id", Values: []string{"i1"}},
				},
				Children: []*Block{{Tag: "span"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PresetSpec{Tag: "fa", Element: template, Transform: tt.rewrite.Transform()}.Compile()
			got, err := p.Apply(original)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Tag, got.Tag)
			assert.Equal(t, tt.want.Content, got.Content)
			assert.Equal(t, tt.want.Attributes, got.Attributes)
			assert.Equal(t, tt.want.Children, got.Children)
		})
	}
}

func TestBlockClone(t *testing.T) {
	b := &Block{
		Tag:        "div",
		Attributes: Attributes{{Name: "class", Values: []string{"a"}}},
		Children:   []*Block{{Tag: "p", Content: "x"}},
	}
	c := b.Clone()
	c.Attributes.Append("class", "b")
	c.Children[0].Content = "y"

	assert.Equal(t, []string{"a"}, b.Attributes[0].Values)
	assert.Equal(t, "x", b.Children[0].Content)
	assert.Equal(t, `<div class="a b"> +1`, c.String())
}
