// Package pipeline wires inspection, classification, and extraction into the
// per-title processing flow.
//
// A title is processed in two stages: Inspect probes the container once and
// fails before any output exists; Extract runs the planned operations into a
// staging directory and publishes it under the output root with a single
// rename, so listing collaborators never observe a partially populated title.
// A failed extraction keeps its staging directory for inspection but never
// publishes it.
package pipeline
