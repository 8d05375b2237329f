package mew

import (
	"strconv"
	"strings"

	"github.com/hesusruiz/mew/sliceedit"
)

// DefaultTag is used when a header line does not start with a tag name
const DefaultTag = "div"

// LiteralTag marks a block whose content is written verbatim
const LiteralTag = "|"

// An Attribute is a named list of values, or a bare attribute when Valueless is true.
// Values are rendered joined by a single space, so repeated class sigils accumulate.
type Attribute struct {
	Name      string
	Values    []string
	Valueless bool
}

// Attributes keeps the attributes of a block in insertion order
type Attributes []Attribute

// index returns the position of the attribute with the given name, or -1
func (as Attributes) index(name string) int {
	for i := range as {
		if as[i].Name == name {
			return i
		}
	}
	return -1
}

// Get returns the attribute with the given name, if it exists
func (as Attributes) Get(name string) (Attribute, bool) {
	i := as.index(name)
	if i == -1 {
		return Attribute{}, false
	}
	return as[i], true
}

// Has reports whether the attribute exists
func (as Attributes) Has(name string) bool {
	return as.index(name) != -1
}

// Append adds values to the attribute, creating it at the end if it does not exist.
// Appending to a valueless attribute turns it into a normal one.
func (as *Attributes) Append(name string, values ...string) {
	i := as.index(name)
	if i == -1 {
		*as = append(*as, Attribute{Name: name, Values: append([]string(nil), values...)})
		return
	}
	a := &(*as)[i]
	a.Valueless = false
	a.Values = append(a.Values, values...)
}

// Set replaces the values of the attribute, keeping its position if it already exists
func (as *Attributes) Set(name string, values ...string) {
	i := as.index(name)
	if i == -1 {
		as.Append(name, values...)
		return
	}
	(*as)[i] = Attribute{Name: name, Values: append([]string(nil), values...)}
}

// SetValueless makes the attribute a bare one, rendered without '='
func (as *Attributes) SetValueless(name string) {
	i := as.index(name)
	if i == -1 {
		*as = append(*as, Attribute{Name: name, Valueless: true})
		return
	}
	(*as)[i] = Attribute{Name: name, Valueless: true}
}

// Delete removes the attribute if it exists
func (as *Attributes) Delete(name string) {
	i := as.index(name)
	if i == -1 {
		return
	}
	*as = append((*as)[:i], (*as)[i+1:]...)
}

// Replace replaces every occurrence of old by new in the values of the attribute
func (as Attributes) Replace(name, old, new string) {
	i := as.index(name)
	if i == -1 {
		return
	}
	for j, v := range as[i].Values {
		buf := sliceedit.NewBuffer(v)
		buf.ReplaceAllString(old, new)
		as[i].Values[j] = buf.String()
	}
}

// Clone returns a deep copy of the attributes
func (as Attributes) Clone() Attributes {
	if as == nil {
		return nil
	}
	m := make(Attributes, len(as))
	for i, a := range as {
		m[i] = Attribute{Name: a.Name, Valueless: a.Valueless, Values: append([]string(nil), a.Values...)}
	}
	return m
}

// Block is one node of the parsed document: one element and its descendants
type Block struct {
	Tag        string
	Content    string
	Attributes Attributes
	Children   []*Block

	// Line is the header line this block was parsed from
	Line string
}

// NewBlock returns an empty block with the default tag
func NewBlock() *Block {
	return &Block{Tag: DefaultTag}
}

// IsLiteral reports whether the block is written verbatim, without any tag
func (b *Block) IsLiteral() bool {
	return b.Tag == LiteralTag
}

// Clone returns a deep copy of the block, including its children
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	m := &Block{
		Tag:        b.Tag,
		Content:    b.Content,
		Attributes: b.Attributes.Clone(),
		Line:       b.Line,
	}
	if len(b.Children) > 0 {
		m.Children = make([]*Block, len(b.Children))
		for i, c := range b.Children {
			m.Children[i] = c.Clone()
		}
	}
	return m
}

// String returns a short representation of the block, used for logging
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(b.Tag)
	for _, a := range b.Attributes {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		if !a.Valueless {
			sb.WriteString(`="`)
			sb.WriteString(strings.Join(a.Values, " "))
			sb.WriteByte('"')
		}
	}
	sb.WriteString(">")
	if len(b.Children) > 0 {
		sb.WriteString(" +")
		sb.WriteString(strconv.Itoa(len(b.Children)))
	}
	return sb.String()
}
