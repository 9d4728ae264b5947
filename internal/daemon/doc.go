// Package daemon coordinates the long-running Lookout process and system
// integration points.
//
// It wires configuration, observation storage, the audio recorder, and the
// generation workflow into a single lifecycle with flock-based locking to
// prevent multiple instances. The daemon runs preflight checks on startup,
// exposes a manual pass trigger, and owns the notification test hook.
//
// Keep orchestration logic here: capture and generation internals should live
// in their respective packages while the daemon focuses on startup, shutdown,
// and high level coordination.
package daemon
