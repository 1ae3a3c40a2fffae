// Package errors classifies the failures that owl-common's transport and
// protocol packages can produce into three classes — transient, invalid,
// and fatal — so callers can decide whether to retry, reject, or tear down
// a connection without inspecting error strings.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass represents the classification of an error for handling
// purposes. Decode failures never reach this package (they are surfaced
// in-band as empty/default values), so transport failure
// (Transient/Fatal) and transient unavailability (Transient) appear here,
// along with Invalid for configuration, metric-registration and closed
// backlog errors.
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried, such
	// as a stalled read or a peer that has not yet accepted a connection.
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	// that retrying cannot fix.
	ErrorInvalid
	// ErrorFatal represents a broken connection or protocol violation that
	// should end the session.
	ErrorFatal
)

// String returns the string representation of ErrorClass.
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for conditions that arise in the wire/transport
// layers.
var (
	// Connection lifecycle.
	ErrClosed                 = errors.New("connection closed")
	ErrConnectionLost         = errors.New("connection lost")
	ErrConnectionTimeout      = errors.New("connection timeout")
	ErrConnectionRefused      = errors.New("connection refused")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
	ErrInterrupted            = errors.New("operation interrupted")

	// Handshake/protocol errors.
	ErrHandshakeMismatch = errors.New("handshake identifier mismatch")

	// Decode-adjacent error classified as invalid by IsInvalid. No decoder
	// in this module returns it; the decoders report a validity flag.
	ErrMalformedFrame = errors.New("malformed frame")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// classifiedError wraps an error with the class a caller needs to decide
// how to handle it.
type classifiedError struct {
	class     ErrorClass
	err       error
	component string
	operation string
}

// Error implements the error interface.
func (ce *classifiedError) Error() string {
	return ce.err.Error()
}

// Unwrap returns the underlying error.
func (ce *classifiedError) Unwrap() error {
	return ce.err
}

// IsTransient reports whether err is transient and safe to retry. An error
// not produced by this package's Wrap* helpers is considered transient only
// if it matches one of the known connection-lifecycle sentinels or a
// context deadline/cancellation, never by inspecting its message text.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.class == ErrorTransient
	}

	return errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrConnectionRefused) ||
		errors.Is(err, ErrTemporarilyUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// IsFatal reports whether err should end the session rather than be
// retried.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.class == ErrorFatal
	}

	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrHandshakeMismatch) ||
		errors.Is(err, ErrClosed)
}

// IsInvalid reports whether err stems from invalid input or configuration.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.class == ErrorInvalid
	}

	return errors.Is(err, ErrMalformedFrame)
}

// Classify returns the error class for err, defaulting to ErrorTransient
// for an untagged error not matching any known sentinel, since an
// unrecognized transport failure is usually worth one retry.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}
	switch {
	case IsFatal(err):
		return ErrorFatal
	case IsInvalid(err):
		return ErrorInvalid
	default:
		return ErrorTransient
	}
}

func newClassified(class ErrorClass, err error, component, operation string) *classifiedError {
	return &classifiedError{class: class, err: err, component: component, operation: operation}
}

// Wrap annotates err with the component and method that produced it
// following the pattern "component.method: action failed: %w", without
// attaching a class.
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps err as transient with component/method context.
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorTransient, Wrap(err, component, method, action), component, method)
}

// WrapFatal wraps err as fatal with component/method context.
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorFatal, Wrap(err, component, method, action), component, method)
}

// WrapInvalid wraps err as invalid with component/method context.
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorInvalid, Wrap(err, component, method, action), component, method)
}
