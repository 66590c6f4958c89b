// Package errors provides typed error handling for hhdt operations.
//
// Every validation failure raised by the envelope packages carries
// CodeInvalidArgument. The remaining codes are used by the CLI and MCP
// callers.
//
// Example usage:
//
//	// Creating errors
//	err := errors.InvalidArgument("Invalid 'source' value: %s", src)
//
//	// Wrapping errors
//	err := errors.InputRead("stdin", ioErr)
//
//	// Checking error codes
//	if errors.Is(err, errors.CodeInvalidArgument) {
//	    // reject the message
//	}
//
//	// Stdlib compatibility
//	var hErr *errors.Error
//	if errors.As(err, &hErr) {
//	    fmt.Println(hErr.Code, hErr.Message)
//	}
package errors
