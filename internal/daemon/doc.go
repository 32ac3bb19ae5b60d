// Package daemon hosts the long-running process: a single-instance file lock,
// the queue workers, and the HTTP API for uploads and playback discovery.
package daemon
