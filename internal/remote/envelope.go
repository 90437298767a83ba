package remote

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope identifies one remote operation. It is immutable once sent.
type Envelope struct {
	Name   string         `json:"name"`
	Args   []any          `json:"args,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

// ErrorDescriptor is the wire form of a failure reported by the far side.
type ErrorDescriptor struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// reply is the wire form of a command result. Exactly one field is populated.
type reply struct {
	Value json.RawMessage  `json:"value,omitempty"`
	Error *ErrorDescriptor `json:"error,omitempty"`
}

// Sentinel errors for wire-level failures.
var (
	// ErrTransport marks a lost connection or malformed frame.
	ErrTransport = errors.New("transport failure")
	// ErrProtocol marks a payload that could not be interpreted.
	ErrProtocol = errors.New("protocol failure")
)

// RemoteError is an error descriptor received in a reply: the far side
// executed the command and reported failure.
type RemoteError struct {
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Kind == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}

func protocolErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProtocol, op, err)
}
