package driver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"credaq/internal/logging"
	"credaq/internal/remote"
)

// Proxy is the client-side stub shared by the typed driver proxies. It is a
// pure forwarding layer: each call wraps one transport round trip with a
// timeout, and failures come back classified, never retried. The proxy
// redials a broken session on the next call so it outlives individual
// connections.
type Proxy struct {
	addr    string
	name    string
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	session *remote.Session
}

// NewProxy builds a proxy for the driver service at addr. The timeout bounds
// every call issued through it unless overridden per call.
func NewProxy(name, addr string, timeout time.Duration, logger *slog.Logger) *Proxy {
	return &Proxy{
		addr:    addr,
		name:    name,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "driver-proxy").With(logging.String(logging.FieldDriver, name)),
	}
}

// Addr returns the endpoint the proxy talks to.
func (p *Proxy) Addr() string { return p.addr }

// Close tears down the current session, if any.
func (p *Proxy) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		_ = p.session.Close()
		p.session = nil
	}
}

// Call executes one command with the proxy's default timeout.
func (p *Proxy) Call(cmd Command, args []any, kwargs map[string]any, out any) error {
	return p.CallTimeout(cmd, args, kwargs, out, p.timeout)
}

// CallTimeout executes one command with an explicit timeout. The result, if
// any, is decoded into out.
func (p *Proxy) CallTimeout(cmd Command, args []any, kwargs map[string]any, out any, timeout time.Duration) error {
	session, err := p.acquireSession()
	if err != nil {
		return NewError(KindTransport, string(cmd), "could not reach the instrument", err)
	}

	raw, err := session.Call(remote.Envelope{Name: string(cmd), Args: args, Kwargs: kwargs}, timeout)
	if err != nil {
		return p.classify(cmd, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return NewError(KindProtocol, string(cmd), "undecodable result", err)
	}
	return nil
}

func (p *Proxy) acquireSession() (*remote.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil && !p.session.Broken() {
		return p.session, nil
	}
	if p.session != nil {
		_ = p.session.Close()
		p.session = nil
	}
	session, err := remote.Dial(p.addr, p.timeout)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("driver session established", logging.String(logging.FieldEndpoint, p.addr))
	p.session = session
	return session, nil
}

func (p *Proxy) classify(cmd Command, err error) error {
	switch {
	case errors.Is(err, remote.ErrTimeout):
		return NewError(KindTimeout, string(cmd), "no response within timeout", err)
	case errors.Is(err, remote.ErrProtocol):
		return NewError(KindProtocol, string(cmd), "payload could not be interpreted", err)
	case errors.Is(err, remote.ErrTransport):
		return NewError(KindTransport, string(cmd), "could not reach the instrument", err)
	}
	var remoteErr *remote.RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Kind == "protocol" {
			return NewError(KindProtocol, string(cmd), remoteErr.Message, err)
		}
		return NewError(KindRemote, string(cmd), remoteErr.Message, err)
	}
	return NewError(KindTransport, string(cmd), "could not reach the instrument", err)
}
