// Package envelope implements the Package: a wire envelope that carries
// either a success value or a structured error between processes.
//
// A producer wraps a value, or a caught error, and sends the JSON text:
//
//	pkg, err := envelope.New(result, envelope.WithResponseID(id))
//	wire := pkg.String()
//
//	pkg, err := envelope.CreateFromError("HoloError", cause)
//
// A consumer parses the text and extracts the value. For error packages the
// value is a *source.Error that keeps the sender's error name and belongs to
// the sender's family:
//
//	pkg, err := envelope.Parse(wire)
//	if err != nil {
//	    // malformed message, errors.CodeInvalidArgument
//	}
//	if rerr := pkg.Err(); rerr != nil {
//	    if errors.Is(rerr, source.Holo) { ... }
//	}
//	value := pkg.Value()
//
// Every validation failure is an *errors.Error with CodeInvalidArgument.
package envelope
