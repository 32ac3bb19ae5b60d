// Package policy decides, per elementary stream, how the pipeline extracts it.
//
// Classify is a pure function from a stream description to an Action: copy the
// bitstream unchanged, transcode it to a baseline codec, or skip it. Decisions
// are strictly per-stream; the policy knows nothing about the rest of the
// container, which keeps it trivially unit-testable without invoking any
// external process.
package policy
