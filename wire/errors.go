package wire

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrMissingRoot indicates the expected root key was absent from a decoded payload.
	ErrMissingRoot = errors.New("missing root")

	// ErrMalformedWire indicates input that breaks the tree contract or a value
	// that cannot be coerced to its declared type.
	ErrMalformedWire = errors.New("malformed wire data")
)

// MissingRootError carries the key root extraction was looking for.
type MissingRootError struct {
	Key string
}

func (e *MissingRootError) Error() string {
	if e.Key == "" {
		return "root not set on result"
	}
	return fmt.Sprintf("%s not set on result", e.Key)
}

func (e *MissingRootError) Unwrap() error {
	return ErrMissingRoot
}

// MalformedWireError points at the element that could not be handled.
type MalformedWireError struct {
	Path   string // dotted element path, empty for document level problems
	Reason string
	Cause  error // underlying parser or conversion error, if any
}

func (e *MalformedWireError) Error() string {
	msg := e.Reason
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedWire, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedWire, msg)
}

func (e *MalformedWireError) Unwrap() error {
	return ErrMalformedWire
}

func malformed(path, reason string, cause error) error {
	return &MalformedWireError{Path: path, Reason: reason, Cause: cause}
}
