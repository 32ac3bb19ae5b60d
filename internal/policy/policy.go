package policy

import "unspool/internal/media/inspect"

// Kind discriminates the Action variants.
type Kind string

const (
	KindCopyRemux Kind = "copy_remux"
	KindTranscode Kind = "transcode"
	KindSkip      Kind = "skip"
)

// Baseline codecs the pipeline converts non-passthrough streams to.
const (
	CodecAAC    = "aac"
	CodecWebVTT = "webvtt"
)

// ffprobe codec identifiers for subtitle formats excluded from WebVTT
// conversion: image-based subtitles have no text to convert, and SubRip
// sources are left to the player.
const (
	codecPGS    = "hdmv_pgs_subtitle"
	codecSubRip = "subrip"
)

// Action is the classification result for one stream.
type Action struct {
	Kind Kind
	// Target is the codec a KindTranscode action converts to.
	Target string
	// Reason explains a KindSkip action.
	Reason string
}

// CopyRemux returns the pass-through action: repackage the compressed
// bitstream without re-encoding.
func CopyRemux() Action {
	return Action{Kind: KindCopyRemux}
}

// TranscodeTo returns the action converting the stream to the given codec.
func TranscodeTo(codec string) Action {
	return Action{Kind: KindTranscode, Target: codec}
}

// Skip returns the action that produces no artifact for the stream.
func Skip(reason string) Action {
	return Action{Kind: KindSkip, Reason: reason}
}

// Classify maps a stream description to its extraction Action. It is pure and
// deterministic: the same StreamInfo always yields the same Action.
func Classify(info inspect.StreamInfo) Action {
	switch info.Type {
	case inspect.TypeVideo:
		// Codec identity is collected but does not alter the decision yet;
		// every video codec takes the copy branch into the combined output.
		switch info.Codec {
		default:
			return CopyRemux()
		}
	case inspect.TypeAudio:
		if info.Codec == CodecAAC {
			return CopyRemux()
		}
		return TranscodeTo(CodecAAC)
	case inspect.TypeSubtitle:
		switch info.Codec {
		case codecPGS, codecSubRip:
			return Skip("unsupported")
		default:
			return TranscodeTo(CodecWebVTT)
		}
	default:
		return Skip("unknown stream type")
	}
}
