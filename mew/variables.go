package mew

import (
	"regexp"
	"strings"

	"github.com/hesusruiz/mew/sliceedit"
)

// An assignment line looks like '$name = value' or '$name = "value"'
var reAssignment = regexp.MustCompile(`^\$(\w+)\s*=(.*)$`)

// A placeholder looks like '{{name}}' or '{{ name }}'.
// The name is captured and looked up literally.
var rePlaceholder = regexp.MustCompile(`\{\{\s*([\w.-]+)\s*\}\}`)

// Variables is the store of variables for one render.
// It is created for each call to Render and never shared between documents.
type Variables struct {
	values map[string]string
}

// NewVariables returns a store seeded with a copy of the initial values
func NewVariables(initial map[string]string) *Variables {
	v := &Variables{values: make(map[string]string, len(initial))}
	for name, value := range initial {
		v.values[name] = value
	}
	return v
}

// Set stores the value of a variable, replacing any previous value
func (v *Variables) Set(name, value string) {
	v.values[name] = value
}

// Get returns the value of a variable and whether it was set.
// A variable set to the empty string is reported as set.
func (v *Variables) Get(name string) (string, bool) {
	value, ok := v.values[name]
	return value, ok
}

// Len returns the number of variables in the store
func (v *Variables) Len() int {
	return len(v.values)
}

// Assign checks if the line is a variable assignment and, if so, stores the value.
// It returns true when the line was consumed by the assignment.
func (v *Variables) Assign(line string) bool {
	name, value, ok := parseAssignment(line)
	if !ok {
		return false
	}
	v.values[name] = value
	return true
}

// parseAssignment splits an assignment line in the name and the value
func parseAssignment(line string) (name string, value string, ok bool) {
	m := reAssignment.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}

	value = strings.TrimSpace(m[2])

	// Strip a single pair of surrounding double quotes
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}

	return m[1], value, true
}

// Interpolate replaces the placeholders in s by the values of the variables.
// Placeholders of unset variables are left untouched, unless strict is true,
// in which case an UnresolvedVariableError is returned for the first of them.
func (v *Variables) Interpolate(s string, strict bool) (string, error) {
	out, err := v.interpolate(s, strict)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (v *Variables) interpolate(s string, strict bool) (string, *Error) {
	matches := rePlaceholder.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	// All replacements refer to offsets in the original string,
	// so a value containing a placeholder is never expanded again.
	buf := sliceedit.NewBuffer(s)
	for _, m := range matches {
		name := s[m[2]:m[3]]
		value, ok := v.values[name]
		if !ok {
			if strict {
				return "", &Error{Kind: UnresolvedVariableError, Name: name, Line: s}
			}
			continue
		}
		buf.Replace(m[0], m[1], value)
	}

	return buf.String(), nil
}

// resolveLines runs over the lines in document order. Assignment lines are
// consumed and behave as blank lines, so they never break an indentation run.
// The placeholders of any other line are replaced with the values assigned so far.
// An assigned value is interpolated before it is stored.
func (v *Variables) resolveLines(lines []Line, strict bool) ([]Line, error) {
	kept := make([]Line, 0, len(lines))
	for _, l := range lines {
		if name, value, ok := parseAssignment(l.Text); ok {
			resolved, err := v.interpolate(value, strict)
			if err != nil {
				err.Line = l.Text
				return nil, err
			}
			v.values[name] = resolved
			continue
		}

		text, err := v.interpolate(l.Text, strict)
		if err != nil {
			return nil, err
		}
		kept = append(kept, Line{Text: text, Indentation: l.Indentation})
	}
	return kept, nil
}
