package envelope

import (
	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/source"
)

// Validation messages.
const (
	msgRequired    = "Value is required"
	msgNotNull     = "Value cannot be null or undefined"
	msgNotString   = "Value must be a string"
	msgNotArray    = "Value must be an array"
	msgBadSource   = "Invalid 'source' value: %v"
	msgBadType     = "Invalid 'type' value: %s"
	msgBadFormat   = "Invalid message format: expected JSON, not '%s'"
	msgNotObject   = "Invalid message format: expected object"
	msgMissingType = "Invalid content: missing 'type'"
	msgUnknownType = "Unknown package type '%v'"
)

// Descriptor is the payload of an error package: everything needed to
// rebuild the error on the receiving side.
type Descriptor struct {
	Source  source.Source `json:"source"`
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Stack   []string      `json:"stack"`
}

// descriptorFrom validates an error payload. It accepts a Descriptor, a
// pointer to one, or a decoded JSON object.
func descriptorFrom(payload any) (Descriptor, error) {
	switch p := payload.(type) {
	case nil:
		return Descriptor{}, errors.InvalidArgument(msgNotNull)
	case Descriptor:
		return p.validated()
	case *Descriptor:
		if p == nil {
			return Descriptor{}, errors.InvalidArgument(msgNotNull)
		}
		return p.validated()
	case map[string]any:
		return descriptorFromObject(p)
	default:
		// Scalars and arrays have no fields, so the first field is missing.
		return Descriptor{}, errors.InvalidArgument(msgRequired)
	}
}

func (d Descriptor) validated() (Descriptor, error) {
	if !source.Valid(string(d.Source)) {
		return Descriptor{}, errors.InvalidArgument(msgBadSource, d.Source)
	}
	stack := make([]string, len(d.Stack))
	copy(stack, d.Stack)
	d.Stack = stack
	return d, nil
}

func descriptorFromObject(m map[string]any) (Descriptor, error) {
	src, err := requireString(m, "source")
	if err != nil {
		return Descriptor{}, err
	}
	if !source.Valid(src) {
		return Descriptor{}, errors.InvalidArgument(msgBadSource, src)
	}

	name, err := requireString(m, "error")
	if err != nil {
		return Descriptor{}, err
	}

	message, err := requireString(m, "message")
	if err != nil {
		return Descriptor{}, err
	}

	stack, err := optionalLines(m, "stack")
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		Source:  source.Source(src),
		Error:   name,
		Message: message,
		Stack:   stack,
	}, nil
}

// requireString returns m[key], which must be present and a string.
func requireString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", errors.InvalidArgument(msgRequired)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.InvalidArgument(msgNotString)
	}
	return s, nil
}

// optionalString returns m[key] if present, which must then be a string.
func optionalString(m map[string]any, key string) (string, bool, error) {
	v, ok := m[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, errors.InvalidArgument(msgNotString)
	}
	return s, true, nil
}

// optionalLines returns m[key] as a string slice, defaulting to empty.
func optionalLines(m map[string]any, key string) ([]string, error) {
	v, ok := m[key]
	if !ok {
		return []string{}, nil
	}

	switch arr := v.(type) {
	case []string:
		out := make([]string, len(arr))
		copy(out, arr)
		return out, nil
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			line, ok := item.(string)
			if !ok {
				return nil, errors.InvalidArgument(msgNotString)
			}
			out = append(out, line)
		}
		return out, nil
	default:
		return nil, errors.InvalidArgument(msgNotArray)
	}
}
