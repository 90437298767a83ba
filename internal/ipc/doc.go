// Package ipc implements JSON-RPC over a Unix domain socket between the
// credaq CLI and the credaqd daemon.
package ipc
