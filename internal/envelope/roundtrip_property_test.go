package envelope

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Fuabioo/hhdt/internal/source"
)

// jsonValue holds one generated payload. Gen.Map needs a concrete result
// type, so the dynamic value travels inside a struct.
type jsonValue struct {
	V any
}

// jsonValueGen generates values in the shape encoding/json decodes into:
// float64, string, bool, []any and map[string]any.
func jsonValueGen() gopter.Gen {
	return gen.OneGenOf(
		gen.Float64Range(-1e12, 1e12).Map(func(f float64) jsonValue { return jsonValue{V: f} }),
		gen.AnyString().Map(func(s string) jsonValue { return jsonValue{V: s} }),
		gen.Bool().Map(func(b bool) jsonValue { return jsonValue{V: b} }),
		gen.SliceOf(gen.AnyString()).Map(func(ss []string) jsonValue {
			out := make([]any, len(ss))
			for i, s := range ss {
				out[i] = s
			}
			return jsonValue{V: out}
		}),
		gen.MapOf(gen.AlphaString(), gen.Float64Range(-1e6, 1e6)).Map(func(m map[string]float64) jsonValue {
			out := make(map[string]any, len(m))
			for k, v := range m {
				out[k] = v
			}
			return jsonValue{V: out}
		}),
	)
}

func descriptorGen() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf(source.HoloError, source.UserError, source.AppError),
		gen.Identifier(),
		gen.AnyString(),
		gen.SliceOf(gen.Identifier()),
	).Map(func(vals []any) Descriptor {
		return Descriptor{
			Source:  vals[0].(source.Source),
			Error:   vals[1].(string),
			Message: vals[2].(string),
			Stack:   vals[3].([]string),
		}
	})
}

// TestSuccessRoundTrip_PropertyBased verifies that a success package survives
// encoding and parsing unchanged.
func TestSuccessRoundTrip_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Parse(p.String()).Value() equals p.Value()", prop.ForAll(
		func(value jsonValue, id string) bool {
			pkg, err := New(value.V, WithResponseID(id))
			if err != nil {
				return false
			}
			parsed, err := Parse(pkg.String())
			if err != nil {
				t.Logf("Parse(%s): %v", pkg.String(), err)
				return false
			}
			gotID, ok := parsed.ResponseID()
			return ok && gotID == id && reflect.DeepEqual(parsed.Value(), pkg.Value())
		},
		jsonValueGen(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestErrorRoundTrip_PropertyBased verifies that a descriptor rebuilt into an
// error and projected again is unchanged, and that the error keeps its family.
func TestErrorRoundTrip_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("descriptor survives reconstruction", prop.ForAll(
		func(d Descriptor) bool {
			pkg, err := New(d, WithType(TypeError))
			if err != nil {
				return false
			}
			parsed, err := Parse(pkg.String())
			if err != nil {
				t.Logf("Parse(%s): %v", pkg.String(), err)
				return false
			}

			rerr, ok := parsed.Value().(*source.Error)
			if !ok {
				return false
			}
			family, _ := source.Lookup(d.Source)
			if !stderrors.Is(rerr, family) || rerr.Name() != d.Error {
				return false
			}

			rec := rerr.Record()
			if rec.Source != d.Source || rec.Name != d.Error || rec.Message != d.Message {
				return false
			}
			// An empty stack is replaced by a fresh trace.
			if len(d.Stack) == 0 {
				return len(rec.Stack) > 0
			}
			return reflect.DeepEqual(rec.Stack, d.Stack)
		},
		descriptorGen(),
	))

	properties.Property("CreateFromError of a reconstructed error is a fixed point", prop.ForAll(
		func(d Descriptor) bool {
			if len(d.Stack) == 0 {
				d.Stack = []string{"frame"}
			}
			first, err := New(d, WithType(TypeError))
			if err != nil {
				return false
			}
			second, err := CreateFromError(string(d.Source), first.Err())
			if err != nil {
				return false
			}
			return first.String() == second.String()
		},
		descriptorGen(),
	))

	properties.TestingRun(t)
}
