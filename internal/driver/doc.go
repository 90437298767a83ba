// Package driver defines the call contract between the control process and
// the isolated driver processes, plus both sides of it.
//
// The client side is a set of typed proxies (microscope, camera, goniometer
// speed controller) that turn method calls into transport envelopes, apply a
// per-call timeout, and map wire failures onto the error taxonomy in Kind.
// Proxies never retry; retry policy belongs to the caller. A proxy redials
// its session after a transport failure so it can outlive individual broken
// connections.
//
// The server side is Service, which binds a finite command set to a hardware
// backend through a dispatch table. Simulated backends live in sim.go so the
// whole system runs and tests without instruments attached.
package driver
