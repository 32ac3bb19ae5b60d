// Package extract turns classified streams into output artifacts.
//
// The Orchestrator sequences one blocking external operation per non-skipped
// stream: all video streams first, then audio, then subtitles, ascending index
// within each type. Each operation is bound to exactly one source stream index
// and produces exactly one artifact at a path fixed by the manifest
// convention. A failed operation aborts the remaining steps; artifacts written
// by earlier steps are left in place.
//
// FFmpeg is the production Runner. Operations carry no internal timeout; the
// caller's context is the only cancellation path.
package extract
