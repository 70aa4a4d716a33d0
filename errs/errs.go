// Package errs defines the failure taxonomy shared by pakman handlers and the
// dispatcher.
//
// Handlers and collaborators return plain Go errors. A failure that should be
// reported with a specific outcome is created (or wrapped) with one of the
// constructors in this package; the dispatcher inspects the chain with KindOf
// and maps it to an exit code. Anything without a kind is an unclassified
// failure.
package errs

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is the kind of any error not created by this package.
	KindUnknown Kind = iota
	// KindUsage marks malformed or conflicting command line arguments.
	KindUsage
	// KindDomain marks a general recipe or business-rule violation.
	KindDomain
	// KindInvalidConfiguration marks a configuration the package cannot be built for.
	KindInvalidConfiguration
	// KindInvalidSystemRequirements marks missing system requirements.
	KindInvalidSystemRequirements
	// KindUserInterrupt marks an explicit cancellation by the user.
	KindUserInterrupt
	// KindProcessExit marks a request to terminate with a specific code.
	KindProcessExit
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindDomain:
		return "domain"
	case KindInvalidConfiguration:
		return "invalid-configuration"
	case KindInvalidSystemRequirements:
		return "invalid-system-requirements"
	case KindUserInterrupt:
		return "user-interrupt"
	case KindProcessExit:
		return "process-exit"
	default:
		return "unknown"
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	Msg  string
	// Code is the requested exit status for KindProcessExit.
	Code int
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	case e.Kind == KindProcessExit:
		return fmt.Sprintf("exit status %d", e.Code)
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a bare kind marker (such as ErrUsage) of the
// same kind as e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Msg != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Kind markers for use with errors.Is.
var (
	ErrUsage                     = &Error{Kind: KindUsage}
	ErrDomain                    = &Error{Kind: KindDomain}
	ErrInvalidConfiguration      = &Error{Kind: KindInvalidConfiguration}
	ErrInvalidSystemRequirements = &Error{Kind: KindInvalidSystemRequirements}
	ErrUserInterrupt             = &Error{Kind: KindUserInterrupt}
)

func Usage(msg string) error { return &Error{Kind: KindUsage, Msg: msg} }

func Usagef(format string, args ...any) error {
	return &Error{Kind: KindUsage, Msg: fmt.Sprintf(format, args...)}
}

func Domain(msg string) error { return &Error{Kind: KindDomain, Msg: msg} }

func Domainf(format string, args ...any) error {
	return &Error{Kind: KindDomain, Msg: fmt.Sprintf(format, args...)}
}

func InvalidConfiguration(msg string) error {
	return &Error{Kind: KindInvalidConfiguration, Msg: msg}
}

func InvalidConfigurationf(format string, args ...any) error {
	return &Error{Kind: KindInvalidConfiguration, Msg: fmt.Sprintf(format, args...)}
}

func InvalidSystemRequirements(msg string) error {
	return &Error{Kind: KindInvalidSystemRequirements, Msg: msg}
}

func InvalidSystemRequirementsf(format string, args ...any) error {
	return &Error{Kind: KindInvalidSystemRequirements, Msg: fmt.Sprintf(format, args...)}
}

// Interrupted reports a cancellation requested by the user.
func Interrupted(cause error) error {
	return &Error{Kind: KindUserInterrupt, Msg: "interrupted by user", Err: cause}
}

// Exit requests termination of the current command with the given status.
func Exit(code int) error {
	return &Error{Kind: KindProcessExit, Code: code}
}

// Wrap classifies err as kind, keeping it in the chain.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain.
// A cancelled context counts as a user interrupt.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindUserInterrupt
	}
	return KindUnknown
}

// ExitCode returns the status carried by a process-exit failure in err's chain.
func ExitCode(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindProcessExit {
		return e.Code, true
	}
	return 0, false
}
