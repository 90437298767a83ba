// Package main hosts the credaq CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC
// calls against the credaqd daemon: session start/stop, status, archived
// session inspection, speed controller access, and configuration
// scaffolding. Subcommands stay declarative; the heavy lifting lives in the
// internal packages.
package main
