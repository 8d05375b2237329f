package mew

import (
	"errors"
	"fmt"
	"strconv"
)

// An ErrorKind classifies the errors produced while converting a document.
type ErrorKind uint32

const (
	UnknownError ErrorKind = iota
	// AttributeSyntaxError means an explicit attribute block could not be parsed:
	// unbalanced parentheses or a malformed quoted value.
	AttributeSyntaxError
	// PresetArityError means a preset did not receive the number of content tokens it needs.
	PresetArityError
	// UnresolvedVariableError means a placeholder names a variable that was never set.
	// It is only raised in strict mode.
	UnresolvedVariableError
)

// String returns a string representation of the ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case UnknownError:
		return "UnknownError"
	case AttributeSyntaxError:
		return "AttributeSyntaxError"
	case PresetArityError:
		return "PresetArityError"
	case UnresolvedVariableError:
		return "UnresolvedVariableError"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// Error is the structured error returned by Render.
// Only the fields that make sense for the Kind are set.
type Error struct {
	Kind ErrorKind

	// Line is the source line being processed when the error was detected
	Line string

	// Tag is the tag of the block, for preset errors
	Tag string

	// Expected and Actual are the argument counts, for preset errors
	Expected int
	Actual   int

	// Name is the variable name, for unresolved variables
	Name string

	Msg string
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case PresetArityError:
		msg = fmt.Sprintf("%s: preset %q needs at least %d arguments, got %d", e.Kind, e.Tag, e.Expected, e.Actual)
	case UnresolvedVariableError:
		msg = fmt.Sprintf("%s: variable %q is not set", e.Kind, e.Name)
	default:
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	if len(e.Line) > 0 {
		msg += fmt.Sprintf(" (line %q)", e.Line)
	}
	return msg
}

// Is reports whether target is an *Error of the same kind,
// so errors.Is(err, ErrPresetArity) works for any arity error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is
var (
	ErrAttributeSyntax    = &Error{Kind: AttributeSyntaxError}
	ErrPresetArity        = &Error{Kind: PresetArityError}
	ErrUnresolvedVariable = &Error{Kind: UnresolvedVariableError}
)

func attributeSyntaxError(line, msg string) *Error {
	return &Error{Kind: AttributeSyntaxError, Line: line, Msg: msg}
}
