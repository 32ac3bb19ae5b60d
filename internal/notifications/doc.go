// Package notifications publishes title lifecycle events to ntfy.
//
// NewService returns a noop implementation when no topic is configured, so
// callers never branch on whether notifications are enabled.
package notifications
