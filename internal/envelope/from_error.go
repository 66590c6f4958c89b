package envelope

import (
	"reflect"
	"strings"

	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/source"
)

// genericErrorName is reported for errors built by the standard library's
// errors and fmt packages, which carry no type of their own.
const genericErrorName = "Error"

var genericErrorPackages = map[string]bool{
	"errors": true,
	"fmt":    true,
}

type namer interface{ Name() string }

type messenger interface{ Message() string }

type stacker interface{ Stack() string }

// errorFields is what CreateFromError reads off an error-like value.
type errorFields struct {
	name    string
	message string
	stack   string
}

// CreateFromError builds an error package from a caught error-like value:
// an error, a decoded JSON object with name/message/stack keys, or an
// anonymous struct with Name/Message/Stack fields.
//
// The error name is taken from a Name() method when there is one, then from
// the error's Go type name. Untyped errors from the errors and fmt packages
// are named "Error".
func CreateFromError(src string, err any) (*Package, error) {
	if src == "" {
		return nil, errors.InvalidArgument(msgRequired)
	}
	if isNil(err) {
		return nil, errors.InvalidArgument(msgNotNull)
	}

	f, ierr := inspect(err)
	if ierr != nil {
		return nil, ierr
	}

	stack := []string{}
	if f.stack != "" {
		stack = strings.Split(f.stack, "\n")
	}

	return New(Descriptor{
		Source:  source.Source(src),
		Error:   f.name,
		Message: f.message,
		Stack:   stack,
	}, WithType(TypeError))
}

func inspect(err any) (errorFields, error) {
	switch v := err.(type) {
	case map[string]any:
		return fieldsFromObject(v)
	case error:
		return fieldsFromError(v)
	}

	rv := reflect.Indirect(reflect.ValueOf(err))
	if rv.Kind() == reflect.Struct && rv.Type().Name() == "" {
		return fieldsFromStruct(rv)
	}
	return errorFields{}, errors.InvalidArgument(msgRequired)
}

func fieldsFromObject(m map[string]any) (errorFields, error) {
	name, err := requireString(m, "name")
	if err != nil {
		return errorFields{}, err
	}
	message, err := requireString(m, "message")
	if err != nil {
		return errorFields{}, err
	}
	stack, _, err := optionalString(m, "stack")
	if err != nil {
		return errorFields{}, err
	}
	return errorFields{name: name, message: message, stack: stack}, nil
}

func fieldsFromError(e error) (errorFields, error) {
	var f errorFields

	if n, ok := e.(namer); ok {
		f.name = n.Name()
	} else if name, ok := typeName(e); ok {
		f.name = name
	} else {
		rv := reflect.Indirect(reflect.ValueOf(e))
		if rv.Kind() != reflect.Struct {
			return errorFields{}, errors.InvalidArgument(msgRequired)
		}
		name, err := stringField(rv, "Name", true)
		if err != nil {
			return errorFields{}, err
		}
		f.name = name
	}

	if m, ok := e.(messenger); ok {
		f.message = m.Message()
	} else {
		f.message = e.Error()
	}

	if s, ok := e.(stacker); ok {
		f.stack = s.Stack()
	}
	return f, nil
}

func fieldsFromStruct(rv reflect.Value) (errorFields, error) {
	name, err := stringField(rv, "Name", true)
	if err != nil {
		return errorFields{}, err
	}
	message, err := stringField(rv, "Message", true)
	if err != nil {
		return errorFields{}, err
	}
	stack, err := stringField(rv, "Stack", false)
	if err != nil {
		return errorFields{}, err
	}
	return errorFields{name: name, message: message, stack: stack}, nil
}

// typeName returns the name of e's Go type, dereferencing pointers. ok is
// false for unnamed types.
func typeName(e error) (string, bool) {
	t := reflect.TypeOf(e)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "", false
	}
	if genericErrorPackages[t.PkgPath()] {
		return genericErrorName, true
	}
	name := t.Name()
	// Instantiated generic types are named "T[args]".
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	return name, true
}

func stringField(rv reflect.Value, field string, required bool) (string, error) {
	fv := rv.FieldByName(field)
	if !fv.IsValid() {
		if required {
			return "", errors.InvalidArgument(msgRequired)
		}
		return "", nil
	}
	if fv.Kind() != reflect.String {
		return "", errors.InvalidArgument(msgNotString)
	}
	return fv.String(), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
