package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/Fuabioo/hhdt/internal/errors"
)

// Projector is implemented by success payloads that provide their own JSON
// projection. *source.Error is one.
type Projector interface {
	ToJSON() any
}

// Wire is the JSON shape of a package.
type Wire struct {
	Type       Type    `json:"type"`
	Payload    any     `json:"payload"`
	ResponseID *string `json:"response_id,omitempty"`
}

// ToJSON returns the wire shape. The response_id key is omitted when unset.
func (p *Package) ToJSON() Wire {
	w := Wire{Type: p.typ, ResponseID: p.responseID}

	if p.typ == TypeError {
		d, _ := p.Descriptor()
		w.Payload = d
		return w
	}

	w.Payload = p.payload
	if pr, ok := p.payload.(Projector); ok && !isNil(pr) {
		w.Payload = pr.ToJSON()
	}
	return w
}

// MarshalJSON encodes the wire shape.
func (p *Package) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToJSON())
}

// String returns the compact JSON text of the package. If the payload cannot
// be encoded the result is a %!(envelope: ...) marker instead.
func (p *Package) String() string {
	data, err := p.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%%!(envelope: %v)", err)
	}
	return string(data)
}

// UnmarshalJSON parses data with the same rules as Parse.
func (p *Package) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}

// Parse builds a package from JSON text (string, []byte, json.RawMessage), a
// decoded JSON object, or a Wire value.
func Parse(input any) (*Package, error) {
	data, err := decode(input)
	if err != nil {
		return nil, err
	}

	typ, ok := data["type"]
	if !ok || typ == nil {
		return nil, errors.InvalidArgument(msgMissingType)
	}

	switch typ {
	case string(TypeSuccess):
		id, hasID, err := optionalString(data, "response_id")
		if err != nil {
			return nil, err
		}
		if !hasID {
			return New(data["payload"])
		}
		return New(data["payload"], WithResponseID(id))
	case string(TypeError):
		p, err := New(data["payload"], WithType(TypeError))
		if err != nil {
			return nil, errors.InvalidErrorFormat(err)
		}
		// A non-string id is dropped.
		if id, ok := data["response_id"].(string); ok {
			p.responseID = &id
		}
		return p, nil
	default:
		return nil, errors.InvalidArgument(msgUnknownType, typ)
	}
}

func decode(input any) (map[string]any, error) {
	var raw any
	switch in := input.(type) {
	case nil:
		return nil, errors.InvalidArgument(msgNotNull)
	case string:
		v, err := decodeText([]byte(in))
		if err != nil {
			return nil, err
		}
		raw = v
	case []byte:
		v, err := decodeText(in)
		if err != nil {
			return nil, err
		}
		raw = v
	case json.RawMessage:
		v, err := decodeText(in)
		if err != nil {
			return nil, err
		}
		raw = v
	case Wire:
		return wireObject(in), nil
	case *Wire:
		if in == nil {
			return nil, errors.InvalidArgument(msgNotNull)
		}
		return wireObject(*in), nil
	default:
		raw = in
	}

	if raw == nil {
		return nil, errors.InvalidArgument(msgNotNull)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.InvalidArgument(msgNotObject)
	}
	return m, nil
}

func decodeText(text []byte) (any, error) {
	var v any
	if err := json.Unmarshal(text, &v); err != nil {
		return nil, errors.InvalidArgument(msgBadFormat, string(text))
	}
	return v, nil
}

// wireObject flattens a Wire into the decoded-object form Parse validates.
func wireObject(w Wire) map[string]any {
	m := map[string]any{
		"type":    string(w.Type),
		"payload": w.Payload,
	}
	if w.Type == "" {
		delete(m, "type")
	}
	if w.ResponseID != nil {
		m["response_id"] = *w.ResponseID
	}
	return m
}
