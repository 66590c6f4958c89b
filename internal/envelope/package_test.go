package envelope

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/source"
)

const (
	testResponseID = "QmV1NgkXFwromLvyAmASN7MbgLtgUaEYkozHPGUxcHAbSL"
	holoErrorMsg   = `{"type":"error","payload":{"source":"HoloError","error":"InstanceNotRunningError","message":"Holochain instance is not active yet","stack":[]}}`
)

type InstanceNotRunningError struct {
	msg string
}

func (e *InstanceNotRunningError) Error() string { return e.msg }

type GenericError[T any] struct {
	val T
}

func (e GenericError[T]) Error() string { return fmt.Sprint(e.val) }

func holoDescriptor() map[string]any {
	return map[string]any{
		"source":  "HoloError",
		"error":   "InstanceNotRunningError",
		"message": "Holochain instance is not active yet",
		"stack":   []any{},
	}
}

// assertInvalid fails unless err is an INVALID_ARGUMENT error containing want.
func assertInvalid(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !errors.Is(err, errors.CodeInvalidArgument) {
		t.Errorf("code = %q, want %q", errors.Code(err), errors.CodeInvalidArgument)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, should contain %q", err.Error(), want)
	}
}

func TestNew_Success(t *testing.T) {
	pkg, err := New(true, WithResponseID(testResponseID))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if pkg.Type() != TypeSuccess {
		t.Errorf("Type() = %q, want %q", pkg.Type(), TypeSuccess)
	}
	if pkg.Value() != true {
		t.Errorf("Value() = %v, want true", pkg.Value())
	}
	if pkg.Err() != nil {
		t.Errorf("Err() = %v, want nil", pkg.Err())
	}
	if id, ok := pkg.ResponseID(); !ok || id != testResponseID {
		t.Errorf("ResponseID() = %q, %v", id, ok)
	}
	if _, ok := pkg.Descriptor(); ok {
		t.Error("Descriptor() should not be available on a success package")
	}

	want := `{"type":"success","payload":true,"response_id":"` + testResponseID + `"}`
	if got := pkg.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestNew_SuccessWithoutResponseID(t *testing.T) {
	pkg, err := New(map[string]any{"a": 1.0})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, ok := pkg.ResponseID(); ok {
		t.Error("ResponseID() reported an unset id")
	}
	if got := pkg.String(); got != `{"type":"success","payload":{"a":1}}` {
		t.Errorf("String() = %s", got)
	}
}

func TestNew_SuccessPayloadUnvalidated(t *testing.T) {
	payloads := []any{nil, "text", 3.5, []any{1.0, "two"}, map[string]any{"source": "Blablabla"}}
	for _, payload := range payloads {
		t.Run(fmt.Sprintf("%T", payload), func(t *testing.T) {
			pkg, err := New(payload)
			if err != nil {
				t.Fatalf("New(%v) error: %v", payload, err)
			}
			if !reflect.DeepEqual(pkg.Value(), payload) {
				t.Errorf("Value() = %v, want %v", pkg.Value(), payload)
			}
		})
	}
}

func TestNew_Error(t *testing.T) {
	pkg, err := New(holoDescriptor(), WithType(TypeError))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if got := pkg.String(); got != holoErrorMsg {
		t.Errorf("String() = %s, want %s", got, holoErrorMsg)
	}

	value := pkg.Value()
	rerr, ok := value.(*source.Error)
	if !ok {
		t.Fatalf("Value() = %T, want *source.Error", value)
	}
	if rerr.Name() != "InstanceNotRunningError" {
		t.Errorf("Name() = %q", rerr.Name())
	}
	if rerr.Message() != "Holochain instance is not active yet" {
		t.Errorf("Message() = %q", rerr.Message())
	}
	if !stderrors.Is(rerr, source.Holo) {
		t.Error("reconstructed error is not a HoloError")
	}
	if stderrors.Is(rerr, source.App) {
		t.Error("reconstructed error matched AppError")
	}
	if rerr.Stack() == "" {
		t.Error("empty stack should be replaced by a captured trace")
	}

	if !stderrors.Is(pkg.Err(), source.Holo) {
		t.Error("Err() should return the reconstructed error")
	}
}

func TestNew_ErrorFromDescriptor(t *testing.T) {
	d := Descriptor{
		Source:  source.UserError,
		Error:   "ValidationError",
		Message: "name is empty",
	}

	pkg, err := New(d, WithType(TypeError))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	got, ok := pkg.Descriptor()
	if !ok {
		t.Fatal("Descriptor() not available")
	}
	if got.Stack == nil || len(got.Stack) != 0 {
		t.Errorf("Stack = %#v, want empty slice", got.Stack)
	}

	// The returned descriptor is a copy.
	got.Stack = append(got.Stack, "mutated")
	again, _ := pkg.Descriptor()
	if len(again.Stack) != 0 {
		t.Error("Descriptor() leaked internal state")
	}

	if _, err := New(&d, WithType(TypeError)); err != nil {
		t.Errorf("New(*Descriptor) error: %v", err)
	}
}

func TestNew_Failures(t *testing.T) {
	withField := func(key string, value any) map[string]any {
		m := holoDescriptor()
		m[key] = value
		return m
	}
	without := func(key string) map[string]any {
		m := holoDescriptor()
		delete(m, key)
		return m
	}

	tests := []struct {
		name    string
		payload any
		opts    []Option
		want    string
	}{
		{"invalid type", true, []Option{WithType("invalid_string")}, "Invalid 'type' value: invalid_string"},
		{"null payload", nil, []Option{WithType(TypeError)}, "Value cannot be null or undefined"},
		{"nil descriptor pointer", (*Descriptor)(nil), []Option{WithType(TypeError)}, "Value cannot be null or undefined"},
		{"scalar payload", true, []Option{WithType(TypeError)}, "Value is required"},
		{"missing source", without("source"), []Option{WithType(TypeError)}, "Value is required"},
		{"non-string source", withField("source", 7.0), []Option{WithType(TypeError)}, "Value must be a string"},
		{"unknown source", withField("source", "Blablabla"), []Option{WithType(TypeError)}, "Invalid 'source' value: Blablabla"},
		{"missing error", without("error"), []Option{WithType(TypeError)}, "Value is required"},
		{"null error", withField("error", nil), []Option{WithType(TypeError)}, "Value must be a string"},
		{"missing message", without("message"), []Option{WithType(TypeError)}, "Value is required"},
		{"non-array stack", withField("stack", "line"), []Option{WithType(TypeError)}, "Value must be an array"},
		{"null stack", withField("stack", nil), []Option{WithType(TypeError)}, "Value must be an array"},
		{"non-string stack line", withField("stack", []any{"ok", 1.0}), []Option{WithType(TypeError)}, "Value must be a string"},
		{"unknown descriptor source", Descriptor{Source: "Blablabla"}, []Option{WithType(TypeError)}, "Invalid 'source' value: Blablabla"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, err := New(tt.payload, tt.opts...)
			if pkg != nil {
				t.Errorf("New() = %v, want nil", pkg)
			}
			assertInvalid(t, err, tt.want)
		})
	}
}

func TestNew_ErrorMissingStackDefaults(t *testing.T) {
	m := holoDescriptor()
	delete(m, "stack")

	pkg, err := New(m, WithType(TypeError))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := pkg.String(); got != holoErrorMsg {
		t.Errorf("String() = %s, want %s", got, holoErrorMsg)
	}
}

func TestCreateFromError(t *testing.T) {
	t.Run("typed error", func(t *testing.T) {
		pkg, err := CreateFromError("HoloError", &InstanceNotRunningError{msg: "Holochain instance is not active yet"})
		if err != nil {
			t.Fatalf("CreateFromError() error: %v", err)
		}
		if got := pkg.String(); got != holoErrorMsg {
			t.Errorf("String() = %s, want %s", got, holoErrorMsg)
		}
		if _, ok := pkg.Value().(*source.Error); !ok {
			t.Errorf("Value() = %T, want *source.Error", pkg.Value())
		}
	})

	t.Run("plain object", func(t *testing.T) {
		pkg, err := CreateFromError("HoloError", map[string]any{
			"name":    "InstanceNotRunningError",
			"message": "Holochain instance is not active yet",
		})
		if err != nil {
			t.Fatalf("CreateFromError() error: %v", err)
		}
		if got := pkg.String(); got != holoErrorMsg {
			t.Errorf("String() = %s, want %s", got, holoErrorMsg)
		}
	})

	t.Run("anonymous struct", func(t *testing.T) {
		pkg, err := CreateFromError("HoloError", struct {
			Name    string
			Message string
		}{"InstanceNotRunningError", "Holochain instance is not active yet"})
		if err != nil {
			t.Fatalf("CreateFromError() error: %v", err)
		}
		if got := pkg.String(); got != holoErrorMsg {
			t.Errorf("String() = %s, want %s", got, holoErrorMsg)
		}
	})

	t.Run("stdlib error is generic", func(t *testing.T) {
		pkg, err := CreateFromError("AppError", fmt.Errorf("wrap: %w", stderrors.New("boom")))
		if err != nil {
			t.Fatalf("CreateFromError() error: %v", err)
		}
		d, _ := pkg.Descriptor()
		if d.Error != "Error" || d.Message != "wrap: boom" || d.Source != source.AppError {
			t.Errorf("descriptor = %+v", d)
		}
	})

	t.Run("generic type name", func(t *testing.T) {
		pkg, err := CreateFromError("AppError", GenericError[int]{val: 3})
		if err != nil {
			t.Fatalf("CreateFromError() error: %v", err)
		}
		d, _ := pkg.Descriptor()
		if d.Error != "GenericError" || d.Message != "3" {
			t.Errorf("descriptor = %+v", d)
		}
	})

	t.Run("reconstructed error keeps name and trace", func(t *testing.T) {
		orig := source.Holo.New("InstanceNotRunningError", "not active", []string{"InstanceNotRunningError: not active", "    at x (y.js:1)"})
		pkg, err := CreateFromError("HoloError", orig)
		if err != nil {
			t.Fatalf("CreateFromError() error: %v", err)
		}
		d, _ := pkg.Descriptor()
		want := Descriptor{
			Source:  source.HoloError,
			Error:   "InstanceNotRunningError",
			Message: "not active",
			Stack:   []string{"InstanceNotRunningError: not active", "    at x (y.js:1)"},
		}
		if !reflect.DeepEqual(d, want) {
			t.Errorf("descriptor = %#v, want %#v", d, want)
		}
	})

	t.Run("hhdt error uses its name", func(t *testing.T) {
		pkg, err := CreateFromError("UserError", errors.InvalidArgument("Value is required"))
		if err != nil {
			t.Fatalf("CreateFromError() error: %v", err)
		}
		d, _ := pkg.Descriptor()
		if d.Error != "InvalidArgument" || d.Message != "Value is required" {
			t.Errorf("descriptor = %+v", d)
		}
	})

	t.Run("object stack is split", func(t *testing.T) {
		pkg, err := CreateFromError("UserError", map[string]any{
			"name":    "TypeError",
			"message": "x is undefined",
			"stack":   "TypeError: x is undefined\n    at f (a.js:1:1)",
		})
		if err != nil {
			t.Fatalf("CreateFromError() error: %v", err)
		}
		d, _ := pkg.Descriptor()
		if len(d.Stack) != 2 || d.Stack[1] != "    at f (a.js:1:1)" {
			t.Errorf("Stack = %#v", d.Stack)
		}
	})
}

func TestCreateFromError_Failures(t *testing.T) {
	valid := &InstanceNotRunningError{msg: "Holochain instance is not active yet"}

	tests := []struct {
		name   string
		source string
		err    any
		want   string
	}{
		{"empty source", "", valid, "Value is required"},
		{"unknown source", "Blablabla", valid, "Invalid 'source' value: Blablabla"},
		{"string value", "HoloError", "not an error", "Value is required"},
		{"nil error", "HoloError", nil, "Value cannot be null or undefined"},
		{"nil pointer", "HoloError", (*InstanceNotRunningError)(nil), "Value cannot be null or undefined"},
		{"object without name", "HoloError", map[string]any{"message": "m"}, "Value is required"},
		{"object with numeric name", "HoloError", map[string]any{"name": 1.0, "message": "m"}, "Value must be a string"},
		{"object without message", "HoloError", map[string]any{"name": "E"}, "Value is required"},
		{"object with non-string stack", "HoloError", map[string]any{"name": "E", "message": "m", "stack": []any{}}, "Value must be a string"},
		{"struct without name", "HoloError", struct{ Message string }{"m"}, "Value is required"},
		{"struct with non-string stack", "HoloError", struct {
			Name, Message string
			Stack         int
		}{"E", "m", 1}, "Value must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, err := CreateFromError(tt.source, tt.err)
			if pkg != nil {
				t.Errorf("CreateFromError() = %v, want nil", pkg)
			}
			assertInvalid(t, err, tt.want)
		})
	}
}

type reading struct {
	Celsius float64
}

func (r reading) ToJSON() any {
	return map[string]any{"c": r.Celsius, "unit": "C"}
}

func TestToJSON_Projection(t *testing.T) {
	t.Run("projector", func(t *testing.T) {
		pkg, _ := New(reading{Celsius: 21.5})
		if got := pkg.String(); got != `{"type":"success","payload":{"c":21.5,"unit":"C"}}` {
			t.Errorf("String() = %s", got)
		}
	})

	t.Run("reconstructed error as success payload", func(t *testing.T) {
		pkg, _ := New(source.User.New("ValidationError", "bad", []string{"l1"}))
		want := `{"type":"success","payload":{"source":"UserError","name":"ValidationError","message":"bad","stack":["l1"]}}`
		if got := pkg.String(); got != want {
			t.Errorf("String() = %s, want %s", got, want)
		}
	})

	t.Run("nil projector pointer", func(t *testing.T) {
		pkg, _ := New((*source.Error)(nil))
		if got := pkg.String(); got != `{"type":"success","payload":null}` {
			t.Errorf("String() = %s", got)
		}
	})

	t.Run("json.Marshaler", func(t *testing.T) {
		pkg, _ := New(json.RawMessage(`{"raw":[1,2]}`))
		if got := pkg.String(); got != `{"type":"success","payload":{"raw":[1,2]}}` {
			t.Errorf("String() = %s", got)
		}
	})

	t.Run("unencodable payload", func(t *testing.T) {
		pkg, _ := New(make(chan int))
		if _, err := pkg.MarshalJSON(); err == nil {
			t.Error("MarshalJSON() should fail for a channel payload")
		}
		if got := pkg.String(); !strings.HasPrefix(got, "%!(envelope: ") {
			t.Errorf("String() = %q, want an error marker", got)
		}
	})
}

func TestToJSON_ErrorResponseID(t *testing.T) {
	pkg, err := New(holoDescriptor(), WithType(TypeError), WithResponseID("R7"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	w := pkg.ToJSON()
	if w.ResponseID == nil || *w.ResponseID != "R7" {
		t.Errorf("ResponseID = %v", w.ResponseID)
	}
	if _, ok := w.Payload.(Descriptor); !ok {
		t.Errorf("Payload = %T, want Descriptor", w.Payload)
	}
}
