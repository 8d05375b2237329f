package mew

import (
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// A Sigil is a shortcut symbol for an attribute in the first word of a line,
// like '.note' for class="note" or '#intro' for id="intro".
// For a Valueless sigil the text after the symbol is the name of a bare attribute.
type Sigil struct {
	Name      string
	Symbol    byte
	Valueless bool
}

// DefaultSigils is the table of attribute shortcuts, in matching order
var DefaultSigils = []Sigil{
	{Name: "class", Symbol: '.'},
	{Name: "id", Symbol: '#'},
	{Name: "href", Symbol: '@'},
	{Symbol: ':', Valueless: true},
}

// The tag is the identifier at the start of the line
var reTag = regexp.MustCompile(`^[-_@|\w]+`)

// Parser builds the tree of blocks from the lines of a document
type Parser struct {
	// Strict makes placeholders of unset variables an error
	Strict bool

	vars     *Variables
	log      *zap.SugaredLogger
	sigils   []Sigil
	reSigils *regexp.Regexp
}

// NewParser returns a parser that stores the variable assignments in vars
func NewParser(vars *Variables, logger *zap.SugaredLogger, sigils []Sigil) *Parser {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if len(sigils) == 0 {
		sigils = DefaultSigils
	}
	return &Parser{
		vars:     vars,
		log:      logger,
		sigils:   sigils,
		reSigils: sigilRegexp(sigils),
	}
}

// sigilRegexp builds the regex matching any sigil followed by its text.
// The symbols are an alternation, so no symbol can form a range.
func sigilRegexp(sigils []Sigil) *regexp.Regexp {
	symbols := make([]string, 0, len(sigils))
	for _, s := range sigils {
		symbols = append(symbols, regexp.QuoteMeta(string(s.Symbol)))
	}
	return regexp.MustCompile(`(?:` + strings.Join(symbols, "|") + `)[-_/\w]+`)
}

// Parse normalizes the source, applies the variable assignments and placeholders
// line by line and returns the forest of top-level blocks.
func (p *Parser) Parse(src string) ([]*Block, error) {
	lines, err := p.vars.resolveLines(NormalizeLines(src), p.Strict)
	if err != nil {
		return nil, err
	}
	p.log.Debugw("parsing document", "lines", len(lines), "variables", p.vars.Len())
	return p.ParseBlocks(lines)
}

// ParseBlocks builds the blocks for a sequence of lines.
// Each line owns the contiguous run of following lines which are more indented,
// and those lines are parsed recursively as its children.
// The first line with less or equal indentation starts the next sibling.
func (p *Parser) ParseBlocks(lines []Line) ([]*Block, error) {
	var blocks []*Block

	for i := 0; i < len(lines); {
		header := lines[i]

		// Find the end of the run of more indented lines
		end := i + 1
		for end < len(lines) && lines[end].Indentation > header.Indentation {
			end++
		}

		block, err := p.NewBlock(header)
		if err != nil {
			return nil, err
		}

		block.Children, err = p.ParseBlocks(lines[i+1 : end])
		if err != nil {
			return nil, err
		}

		p.log.Debugw("block", "tag", block.Tag, "indent", header.Indentation, "children", len(block.Children))

		blocks = append(blocks, block)
		i = end
	}

	return blocks, nil
}

// NewBlock creates a block from a header line, extracting tag, attributes and content
func (p *Parser) NewBlock(line Line) (*Block, error) {
	text := line.Trimmed()

	b := &Block{Line: line.Text}

	// Process the explicit attribute block, if the first word has one
	if strings.Contains(firstWord(text), "(") {
		attrs, rest, err := extractAttributeBlock(text)
		if err != nil {
			err.Line = line.Text
			return nil, err
		}
		b.Attributes = attrs
		text = strings.TrimSpace(rest)
	}

	// The sigil shortcuts are merged over the explicit attributes
	for _, a := range p.sigilAttributes(firstWord(text)) {
		if a.Valueless {
			b.Attributes.SetValueless(a.Name)
		} else {
			b.Attributes.Set(a.Name, a.Values...)
		}
	}

	b.Tag = reTag.FindString(text)
	if len(b.Tag) == 0 {
		b.Tag = DefaultTag
	}

	// The content is the rest of the line after the first word
	if words := strings.Fields(text); len(words) > 1 {
		b.Content = strings.Join(words[1:], " ")
	}

	return b, nil
}

// sigilAttributes returns the attributes specified with sigils in the word.
// Repeated sigils of the same kind accumulate their values in order.
func (p *Parser) sigilAttributes(word string) Attributes {
	var attrs Attributes

	for _, match := range p.reSigils.FindAllString(word, -1) {
		for _, s := range p.sigils {
			if match[0] != s.Symbol {
				continue
			}
			if s.Valueless {
				attrs.SetValueless(match[1:])
			} else {
				attrs.Append(s.Name, match[1:])
			}
		}
	}

	return attrs
}

// firstWord returns the first whitespace-delimited word of the text
func firstWord(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexFunc(text, unicode.IsSpace); i != -1 {
		return text[:i]
	}
	return text
}

// extractAttributeBlock parses the '(key="value" ...)' block starting at the first '('
// and returns its attributes and the line with the whole block removed.
// Parenthesis inside quoted values do not count for nesting.
func extractAttributeBlock(line string) (Attributes, string, *Error) {
	start := strings.IndexByte(line, '(')
	end := -1
	depth := 0
	inQuotes := false

scan:
	for i := start; i < len(line); i++ {
		c := line[i]

		if inQuotes {
			switch c {
			case '\\':
				i++
			case '"':
				inQuotes = false
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
				break scan
			}
		}
	}

	if inQuotes {
		return nil, "", attributeSyntaxError("", "unterminated quoted value in attribute block")
	}
	if end == -1 {
		return nil, "", attributeSyntaxError("", "unbalanced parentheses in attribute block")
	}

	attrs, err := parseAttributeList(line[start+1 : end])
	if err != nil {
		return nil, "", err
	}

	return attrs, line[:start] + line[end+1:], nil
}

// parseAttributeList parses a sequence of key="value" pairs and bare keys
func parseAttributeList(s string) (Attributes, *Error) {
	var attrs Attributes

	for {
		s = skipWhiteSpace(s)
		if len(s) == 0 {
			return attrs, nil
		}

		// The key ends on whitespace or the '=' sign
		i := strings.IndexFunc(s, func(r rune) bool { return r == '=' || unicode.IsSpace(r) })
		if i == -1 {
			i = len(s)
		}
		key := s[:i]
		if len(key) == 0 {
			return nil, attributeSyntaxError("", "missing attribute name before '='")
		}
		s = skipWhiteSpace(s[i:])

		// A key without value is a bare attribute
		if len(s) == 0 || s[0] != '=' {
			attrs.SetValueless(key)
			continue
		}

		s = skipWhiteSpace(s[1:])
		if len(s) == 0 || s[0] != '"' {
			return nil, attributeSyntaxError("", "value of attribute '"+key+"' must be double-quoted")
		}

		value, rest, ok := readQuoted(s[1:])
		if !ok {
			return nil, attributeSyntaxError("", "unterminated value for attribute '"+key+"'")
		}
		attrs.Set(key, value)
		s = rest
	}
}

// readQuoted reads up to the closing double quote, honoring backslash escapes.
// It returns the unescaped value and the text after the quote.
func readQuoted(s string) (value string, rest string, ok bool) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			}
		case '"':
			return sb.String(), s[i+1:], true
		default:
			sb.WriteByte(s[i])
		}
	}
	return "", "", false
}

func skipWhiteSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}
