package ssdp

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrorKind represents the category of failure
type ErrorKind int

const (
	// KindTransport indicates an OS resource failure: socket creation, bind,
	// group membership, send or receive.
	KindTransport ErrorKind = iota
	// KindConstruction indicates an outgoing message or send request could
	// not be built, e.g. a message over the size limit or an interface
	// without a name.
	KindConstruction
	// KindCapacity indicates a fixed-size limit was exceeded. Capacity
	// conditions are logged and truncated rather than returned, the kind
	// exists for callers that want to surface them.
	KindCapacity
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindConstruction:
		return "construction error"
	case KindCapacity:
		return "capacity error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ErrEmptyInterfaceName is returned when a send is requested on an
// interface record without a name.
var ErrEmptyInterfaceName = errors.New("interface name is empty")

// Error is the error type returned by the transport and builder packages.
type Error struct {
	Kind      ErrorKind     // Category of failure
	Op        string        // Failing operation: "socket", "bind", "join", "send", "recv", "build", ...
	Interface string        // Interface name, if the failure is tied to one
	Code      syscall.Errno // OS error code, zero when not an OS failure
	Err       error         // Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + e.Op
	if e.Interface != "" {
		msg += " on " + e.Interface
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(" (errno %d)", int(e.Code))
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransportError wraps an OS failure, extracting its errno if present.
func NewTransportError(op, iface string, err error) *Error {
	e := &Error{
		Kind:      KindTransport,
		Op:        op,
		Interface: iface,
		Err:       err,
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Code = errno
	}
	return e
}

// NewConstructionError reports a message or request that could not be built.
func NewConstructionError(op, iface string, err error) *Error {
	return &Error{
		Kind:      KindConstruction,
		Op:        op,
		Interface: iface,
		Err:       err,
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
