package driver

import (
	"errors"
	"fmt"
)

// Kind classifies a driver-level failure. The taxonomy is shared by the
// proxies, the acquisition coordinator, and the IPC surface so an operator
// can act on a reason string without reading logs.
type Kind string

const (
	// KindTransport marks a lost connection or malformed frame. Fatal to the
	// current call; the proxy may be reused after the connection is
	// re-established.
	KindTransport Kind = "transport"
	// KindProtocol marks an envelope or payload that could not be
	// interpreted. Fatal to that call only.
	KindProtocol Kind = "protocol"
	// KindTimeout marks a call or frame wait that exceeded its bound.
	KindTimeout Kind = "timeout"
	// KindRemote marks a failure the driver service executed and reported.
	KindRemote Kind = "remote"
	// KindOutOfMemory marks a frame buffer allocation failure.
	KindOutOfMemory Kind = "out_of_memory"
	// KindDegenerateSession marks a session that finalized with zero frames.
	KindDegenerateSession Kind = "degenerate_session"
	// KindPersistence marks a failed write of results; non-fatal to the
	// instrument state.
	KindPersistence Kind = "persistence"
)

// Error carries a Kind alongside the failing operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified driver error.
func NewError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf extracts the Kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return ""
}

// IsKind reports whether err is a driver error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
