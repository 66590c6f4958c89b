package envelope

import (
	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/source"
)

// Type discriminates success packages from error packages.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

// Package is the envelope. It is immutable once built.
type Package struct {
	typ        Type
	payload    any
	descriptor Descriptor
	responseID *string
}

type options struct {
	typ        Type
	responseID *string
}

// Option configures New.
type Option func(*options)

// WithType sets the package type. The default is TypeSuccess.
func WithType(t Type) Option {
	return func(o *options) { o.typ = t }
}

// WithResponseID sets the correlation id echoed to the requester.
func WithResponseID(id string) Option {
	return func(o *options) { o.responseID = &id }
}

// New builds a package around payload. Success payloads are not inspected;
// error payloads must describe an error of a known source.
func New(payload any, opts ...Option) (*Package, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch o.typ {
	case "":
		o.typ = TypeSuccess
	case TypeSuccess, TypeError:
	default:
		return nil, errors.InvalidArgument(msgBadType, o.typ)
	}

	p := &Package{
		typ:        o.typ,
		responseID: o.responseID,
	}

	if p.typ == TypeError {
		d, err := descriptorFrom(payload)
		if err != nil {
			return nil, err
		}
		p.descriptor = d
		return p, nil
	}

	p.payload = payload
	return p, nil
}

// Type returns the package type.
func (p *Package) Type() Type { return p.typ }

// ResponseID returns the correlation id and whether one was set.
func (p *Package) ResponseID() (string, bool) {
	if p.responseID == nil {
		return "", false
	}
	return *p.responseID, true
}

// Descriptor returns the error payload. ok is false for success packages.
func (p *Package) Descriptor() (d Descriptor, ok bool) {
	if p.typ != TypeError {
		return Descriptor{}, false
	}
	d = p.descriptor
	d.Stack = append([]string(nil), p.descriptor.Stack...)
	if d.Stack == nil {
		d.Stack = []string{}
	}
	return d, true
}

// Value returns the success payload unchanged, or for error packages a
// freshly reconstructed *source.Error. It never fails; throwing is up to the
// caller.
func (p *Package) Value() any {
	if p.typ == TypeError {
		return p.reconstruct()
	}
	return p.payload
}

// Err returns the reconstructed error, or nil for success packages.
func (p *Package) Err() error {
	if p.typ != TypeError {
		return nil
	}
	return p.reconstruct()
}

func (p *Package) reconstruct() *source.Error {
	d := p.descriptor
	family, _ := source.Lookup(d.Source)
	return family.New(d.Error, d.Message, d.Stack)
}
