// Package inspect classifies the elementary streams of a media container.
//
// The Inspector runs ffprobe exactly once per container and exposes the
// resulting metadata as a Snapshot: a partition of stream indices by media
// type plus per-index descriptions. All later pipeline decisions reuse the
// snapshot, so the container is never re-probed mid-title.
//
// Probe failures carry the services.ErrProbe marker and happen before any
// output exists for the title.
package inspect
