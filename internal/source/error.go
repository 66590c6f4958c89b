package source

import (
	"encoding/json"
	"strings"

	"github.com/Fuabioo/hhdt/internal/errors"
)

// Error is an error rebuilt under a family with a runtime-chosen name.
// All fields are set once by the family and never change.
type Error struct {
	source  Source
	name    string
	message string
	stack   string
}

// Record is the JSON projection of an Error. It is the inverse of
// construction: feeding its fields back to the same family yields an
// equivalent error.
type Record struct {
	Source  Source   `json:"source"`
	Name    string   `json:"name"`
	Message string   `json:"message"`
	Stack   []string `json:"stack"`
}

// New builds an error named name. An empty stack captures a fresh trace from
// the caller.
func (f *Family) New(name, message string, stack []string) *Error {
	e := &Error{source: f.source, name: name, message: message}
	if len(stack) > 0 {
		e.stack = strings.Join(stack, "\n")
	} else {
		e.stack = captureStack(name, message, 3)
	}
	return e
}

// Construct is New with a loosely typed stack: a []string, or a decoded JSON
// array of strings, is joined, a string is taken verbatim, nil captures a
// fresh trace. Anything else is rejected.
func (f *Family) Construct(name, message string, stack any) (*Error, error) {
	e := &Error{source: f.source, name: name, message: message}
	switch st := stack.(type) {
	case nil:
		e.stack = captureStack(name, message, 3)
	case []string:
		if len(st) == 0 {
			e.stack = captureStack(name, message, 3)
		} else {
			e.stack = strings.Join(st, "\n")
		}
	case []any:
		lines := make([]string, len(st))
		for i, v := range st {
			line, ok := v.(string)
			if !ok {
				return nil, errors.InvalidArgument("Invalid 'stack' value: %v", stack)
			}
			lines[i] = line
		}
		if len(lines) == 0 {
			e.stack = captureStack(name, message, 3)
		} else {
			e.stack = strings.Join(lines, "\n")
		}
	case string:
		e.stack = st
	default:
		return nil, errors.InvalidArgument("Invalid 'stack' value: %v", stack)
	}
	return e, nil
}

// Name is the error's effective name, e.g. "InstanceNotRunningError".
func (e *Error) Name() string { return e.name }

// Message is the human-readable text.
func (e *Error) Message() string { return e.message }

// Stack is the trace, lines separated by newlines. It may be empty.
func (e *Error) Stack() string { return e.stack }

// Source is the tag of the family that built the error.
func (e *Error) Source() Source { return e.source }

// Family returns the family that built the error.
func (e *Error) Family() *Family {
	f, _ := Lookup(e.source)
	return f
}

// String returns "<name>: <message>".
func (e *Error) String() string {
	return e.name + ": " + e.message
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// Is matches the error's family, or another Error with the same source and
// name.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Family:
		return t.source == e.source
	case *Error:
		return t.source == e.source && t.name == e.name
	}
	return false
}

// ToJSON returns the error's projection. An empty trace projects to an empty
// slice.
func (e *Error) ToJSON() any {
	return e.Record()
}

// Record returns the typed projection used by ToJSON.
func (e *Error) Record() Record {
	stack := []string{}
	if e.stack != "" {
		stack = strings.Split(e.stack, "\n")
	}
	return Record{
		Source:  e.source,
		Name:    e.name,
		Message: e.message,
		Stack:   stack,
	}
}

// MarshalJSON encodes the error's projection.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Record())
}
