// Package action decides when accumulated evidence crosses the threshold for
// a user-facing interruption. Every generator passes two shared guards
// before its own trigger logic: a per-generator cooldown and a global
// dismissal back-off. Channel choice (popup vs notification) is likewise a
// shared policy gated on mood and recent popup history.
package action
