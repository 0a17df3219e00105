// Package runerr defines the error kinds surfaced by the run pipeline.
//
// Three kinds exist: configuration errors (malformed language declarations,
// unresolvable extensions), compilation errors (any compiler or linker
// invocation exiting non-zero) and execution errors (the produced binary or
// an interpreter failing). Cache bookkeeping failures are never represented
// here; they degrade locally and are logged as warnings.
package runerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindConfiguration covers malformed toolchain declarations and
	// extensions no rule resolves.
	KindConfiguration Kind = iota

	// KindCompilation covers compiler and linker invocations that exit
	// non-zero.
	KindCompilation

	// KindExecution covers failures of the produced binary or an
	// interpreter, including a missing target executable.
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindCompilation:
		return "compilation"
	case KindExecution:
		return "execution"
	}

	return "unknown"
}

// Error is a classified pipeline error. It wraps an underlying cause when
// one exists so callers can use errors.Is / errors.As through it.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Msg, e.Err)
	}

	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration creates a configuration error.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...)}
}

// Compilation creates a compilation error.
func Compilation(format string, args ...any) *Error {
	return &Error{Kind: KindCompilation, Msg: fmt.Sprintf(format, args...)}
}

// Execution creates an execution error.
func Execution(format string, args ...any) *Error {
	return &Error{Kind: KindExecution, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a classified error message.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err (or anything it wraps) is a pipeline error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}

	return false
}
