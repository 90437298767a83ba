package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// ErrTimeout marks a call that produced no reply within its deadline.
var ErrTimeout = errors.New("call timed out")

// Session is one open connection to one driver service. It owns the socket
// lifetime and serializes calls: one outstanding request per connection.
// Reconnecting after a failure is the caller's responsibility, not the
// session's; after a transport error or timeout the session is broken and
// every further call fails fast.
type Session struct {
	mu     sync.Mutex
	conn   net.Conn
	broken bool
}

// Dial opens a session to the driver service at addr.
func Dial(addr string, timeout time.Duration) (*Session, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, transportErr("dial "+addr, err)
	}
	return &Session{conn: conn}, nil
}

// NewSession wraps an established connection, mainly for tests.
func NewSession(conn net.Conn) *Session {
	return &Session{conn: conn}
}

// Call sends the envelope and blocks for the reply. A zero timeout means no
// deadline. The returned bytes are the raw JSON value of a successful reply.
func (s *Session) Call(env Envelope, timeout time.Duration) (json.RawMessage, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, protocolErr("encode envelope", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.broken {
		return nil, transportErr("call "+env.Name, net.ErrClosed)
	}

	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := s.conn.SetDeadline(deadline); err != nil {
		s.broken = true
		return nil, transportErr("set deadline", err)
	}

	if err := writeFrame(s.conn, payload); err != nil {
		s.broken = true
		return nil, s.classify("send "+env.Name, err)
	}
	raw, err := readFrame(s.conn)
	if err != nil {
		s.broken = true
		return nil, s.classify("receive "+env.Name, err)
	}

	var rep reply
	if err := json.Unmarshal(raw, &rep); err != nil {
		s.broken = true
		return nil, protocolErr("decode reply for "+env.Name, err)
	}
	if rep.Error != nil {
		return nil, &RemoteError{Kind: rep.Error.Kind, Message: rep.Error.Message}
	}
	return rep.Value, nil
}

// Broken reports whether the session can still carry calls.
func (s *Session) Broken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken || s.conn == nil
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Session) classify(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
	}
	return transportErr(op, err)
}
