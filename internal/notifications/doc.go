// Package notifications delivers generated actions to the user.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set, in
// which case actions are still recorded in the store but never pushed.
// Popups and notifications share the HTTP glue and differ only in the ntfy
// priority they ride on.
//
// Extend this package if you need alternative transports; the rest of the
// daemon depends only on the Service interface.
package notifications
