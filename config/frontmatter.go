package config

import (
	"fmt"
	"strings"

	"github.com/hesusruiz/mew/mew"
	"github.com/hesusruiz/vcutils/yaml"
)

// FrontMatter is the YAML metadata at the start of a document:
//
//	---
//	pretty: true
//	variables:
//	  title: My page
//	---
//	html
//	  ...
type FrontMatter struct {
	// Variables seed the variables of this document, over the configured ones
	Variables map[string]string

	// Pretty and Strict are nil when the document does not set them
	Pretty *bool
	Strict *bool

	// Meta is the whole parsed block
	Meta *yaml.YAML
}

// SplitFrontMatter separates the front matter from the body of the document.
// A document without front matter is returned unchanged with a nil FrontMatter.
func SplitFrontMatter(src string) (*FrontMatter, string, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")

	// We accept YAML data only at the beginning of the file
	if !strings.HasPrefix(src, "---") {
		return nil, src, nil
	}

	lines := strings.Split(src, "\n")

	// Build a string with all lines up to the next "---"
	var yamlString strings.Builder
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "---") {
			end = i
			break
		}
		yamlString.WriteString(lines[i])
		yamlString.WriteString("\n")
	}
	if end == -1 {
		return nil, "", fmt.Errorf("%w: missing closing '---'", ErrFrontMatter)
	}

	meta, err := yaml.ParseYaml(yamlString.String())
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}

	fm := &FrontMatter{
		Variables: map[string]string{},
		Meta:      meta,
	}
	for name, value := range meta.Map("variables") {
		if value == nil {
			fm.Variables[name] = ""
			continue
		}
		fm.Variables[name] = fmt.Sprint(value)
	}
	if _, err := meta.Get("pretty"); err == nil {
		v := meta.Bool("pretty")
		fm.Pretty = &v
	}
	if _, err := meta.Get("strict"); err == nil {
		v := meta.Bool("strict")
		fm.Strict = &v
	}

	return fm, strings.Join(lines[end+1:], "\n"), nil
}

// Options returns the converter options set by the front matter
func (fm *FrontMatter) Options() []mew.Option {
	if fm == nil {
		return nil
	}
	opts := []mew.Option{mew.WithVariables(fm.Variables)}
	if fm.Strict != nil {
		opts = append(opts, mew.WithStrictVariables(*fm.Strict))
	}
	return opts
}

// PrettyOr returns the pretty setting of the document, or def if it does not set one
func (fm *FrontMatter) PrettyOr(def bool) bool {
	if fm == nil || fm.Pretty == nil {
		return def
	}
	return *fm.Pretty
}
