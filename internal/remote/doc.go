// Package remote implements the framed request/response transport between
// the control process and the isolated driver processes.
//
// Each message on the wire is a 4-byte big-endian length prefix followed by a
// JSON payload: requests carry an Envelope{name, args, kwargs}, replies carry
// either a value or an error descriptor, never both. The transport is
// payload-agnostic; it has no knowledge of what a command name means. One
// request is outstanding per connection at a time, which matches the
// non-reentrant vendor drivers sitting behind the servers.
//
// Wire failures surface as ErrTransport, undecodable payloads as ErrProtocol,
// and an error descriptor in a reply as *RemoteError. Callers map these onto
// their own error taxonomy.
package remote
