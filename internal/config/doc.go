// Package config loads, normalizes, and validates the credaq TOML
// configuration.
//
// It owns the on-disk schema (driver endpoints, acquisition defaults,
// experiment paths, logging surface), default values, and `~` expansion.
// The acquisition core never reads configuration files itself; the daemon
// resolves a Config once and hands the relevant values to coordinators and
// proxies at session start.
package config
