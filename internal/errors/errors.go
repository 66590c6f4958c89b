package errors

import (
	"errors"
	"fmt"
)

// Error code constants
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInputRead       = "INPUT_READ"
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeRemoteError     = "REMOTE_ERROR"
)

// names maps codes to the display name used when an error crosses the wire.
var names = map[string]string{
	CodeInvalidArgument: "InvalidArgument",
	CodeInputRead:       "InputReadError",
	CodeConfigInvalid:   "ConfigError",
	CodeRemoteError:     "RemoteError",
}

// Error represents an hhdt error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	wrapped error
	Code    string
	Message string
}

// Error returns the message, followed by the wrapped cause if there is one.
func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.wrapped)
	}
	return e.Message
}

// Unwrap returns the wrapped error, supporting errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// Name returns the display name for the error's code.
func (e *Error) Name() string {
	if n, ok := names[e.Code]; ok {
		return n
	}
	return "Error"
}

// New creates a new hhdt error with the given code and message.
func New(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new hhdt error that wraps an underlying error.
func Wrap(code string, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		wrapped: err,
	}
}

// Code extracts the error code from an error.
// Returns an empty string if the error is not an hhdt error.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is checks if an error has a specific error code.
func Is(err error, code string) bool {
	return Code(err) == code
}

// Convenience constructors

// InvalidArgument creates an INVALID_ARGUMENT error with a formatted message.
func InvalidArgument(format string, args ...any) *Error {
	return New(CodeInvalidArgument, fmt.Sprintf(format, args...))
}

// InvalidErrorFormat wraps a payload validation failure of an error package.
func InvalidErrorFormat(err error) *Error {
	return Wrap(CodeInvalidArgument, "Invalid error format", err)
}

// InputRead creates an INPUT_READ error wrapping the underlying cause.
func InputRead(what string, err error) *Error {
	return Wrap(CodeInputRead, fmt.Sprintf("failed to read %s", what), err)
}

// ConfigInvalid creates a CONFIG_INVALID error.
func ConfigInvalid(key string, err error) *Error {
	return Wrap(CodeConfigInvalid, fmt.Sprintf("invalid %s", key), err)
}

// RemoteError creates a REMOTE_ERROR error for a decoded error package.
func RemoteError(err error) *Error {
	return Wrap(CodeRemoteError, "message carries an error", err)
}
