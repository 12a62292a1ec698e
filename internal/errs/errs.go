// Package errs defines the closed error enumeration surfaced by the binlog
// sender core: ok (nil error), invalid_argument, not_found, already_exists,
// io_error, end_file, incomplete, corruption. The reader, task, pool and
// peer-send code (internal/binlog, internal/sendtask, internal/taskpool,
// internal/sender) return these directly. Is also matches one wrapped by
// github.com/pkg/errors or fmt.Errorf's %w. internal/config and
// internal/retry return their own plain errors, not one of these kinds.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a closed enumeration of the error kinds this core can surface.
type Kind int

const (
	InvalidArgument Kind = iota
	NotFound
	AlreadyExists
	IOError
	EndFile
	Incomplete
	Corruption
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case AlreadyExists:
		return "already_exists"
	case IOError:
		return "io_error"
	case EndFile:
		return "end_file"
	case Incomplete:
		return "incomplete"
	case Corruption:
		return "corruption"
	default:
		return "unknown"
	}
}

// Error is the concrete type returned for every Kind above.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds an *Error of the given kind with a formatted message.
func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is (or wraps) an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
