package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"credaq/internal/logging"
)

// Handler executes one named command. The returned value must be JSON
// encodable. A returned error becomes an error descriptor in the reply.
type Handler func(args []any, kwargs map[string]any) (any, error)

// KindError lets handlers control the kind string of the error descriptor
// sent back to the client. Plain errors are reported with kind "remote".
type KindError struct {
	Kind    string
	Message string
}

func (e *KindError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// Server accepts connections and dispatches envelopes to registered
// handlers. Commands on a single connection are processed strictly one at a
// time; concurrent connections each get their own serialized stream, and the
// dispatch table itself is immutable after Serve starts.
type Server struct {
	listener net.Listener
	handlers map[string]Handler
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
	conns  map[net.Conn]struct{}
	wg     sync.WaitGroup
}

// NewServer builds a server for an already-bound listener.
func NewServer(listener net.Listener, handlers map[string]Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	table := make(map[string]Handler, len(handlers))
	for name, h := range handlers {
		table[name] = h
	}
	return &Server{
		listener: listener,
		handlers: table,
		logger:   logger,
		conns:    make(map[net.Conn]struct{}),
	}
}

// Listen binds addr and returns a ready server.
func Listen(addr string, handlers map[string]Handler, logger *slog.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, transportErr("listen "+addr, err)
	}
	return NewServer(listener, handlers, logger), nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve accepts connections until Close is called. It blocks.
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			s.logger.Warn("accept failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "remote_accept_failed"))
			continue
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()
		go func(c net.Conn) {
			defer s.wg.Done()
			s.serveConn(c)
		}(conn)
	}
}

// Close stops the listener, disconnects the remaining peers, and waits for
// their serve goroutines. Proxies hold their sessions open for their whole
// lifetime, so shutdown must not wait for peers to hang up.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conns := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()
	_ = s.listener.Close()
	for _, conn := range conns {
		_ = conn.Close()
	}
	s.wg.Wait()
}

func (s *Server) serveConn(conn net.Conn) {
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()
	for {
		raw, err := readFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("connection ended", logging.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.writeError(conn, "protocol", fmt.Sprintf("undecodable envelope: %v", err))
			return
		}

		value, handlerErr := s.dispatch(env)
		if handlerErr != nil {
			kind, message := describeError(handlerErr)
			if !s.writeError(conn, kind, message) {
				return
			}
			continue
		}

		encoded, err := json.Marshal(reply{Value: value})
		if err != nil {
			if !s.writeError(conn, "protocol", fmt.Sprintf("unencodable result for %s: %v", env.Name, err)) {
				return
			}
			continue
		}
		if err := writeFrame(conn, encoded); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(env Envelope) (json.RawMessage, error) {
	handler, ok := s.handlers[env.Name]
	if !ok {
		return nil, &KindError{Kind: "protocol", Message: fmt.Sprintf("unknown command %q", env.Name)}
	}
	result, err := handler(env.Args, env.Kwargs)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, &KindError{Kind: "protocol", Message: fmt.Sprintf("unencodable result for %s: %v", env.Name, err)}
	}
	return encoded, nil
}

func (s *Server) writeError(conn net.Conn, kind, message string) bool {
	encoded, err := json.Marshal(reply{Error: &ErrorDescriptor{Kind: kind, Message: message}})
	if err != nil {
		return false
	}
	return writeFrame(conn, encoded) == nil
}

func describeError(err error) (kind, message string) {
	var kindErr *KindError
	if errors.As(err, &kindErr) {
		return kindErr.Kind, kindErr.Message
	}
	return "remote", err.Error()
}
