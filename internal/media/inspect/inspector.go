package inspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"unspool/internal/media/ffprobe"
	"unspool/internal/media/lang"
	"unspool/internal/services"
)

// MediaType identifies the kind of an elementary stream.
type MediaType string

const (
	TypeVideo    MediaType = "video"
	TypeAudio    MediaType = "audio"
	TypeSubtitle MediaType = "subtitle"
)

// StreamInfo is the full description of one elementary stream.
type StreamInfo struct {
	Index    int
	Type     MediaType
	Codec    string
	Language string
}

// Snapshot is a single ffprobe result reframed for classification: stream
// indices partitioned by media type, with per-index descriptions. Streams of
// any other type (data, attachments) are ignored entirely.
type Snapshot struct {
	Video    []int
	Audio    []int
	Subtitle []int

	infos map[int]StreamInfo
}

// Inspector probes containers with ffprobe.
type Inspector struct {
	binary string
}

// New constructs an Inspector that invokes the given ffprobe binary.
func New(binary string) *Inspector {
	return &Inspector{binary: binary}
}

// Probe inspects the container at path and returns its stream snapshot.
func (i *Inspector) Probe(ctx context.Context, path string) (*Snapshot, error) {
	result, err := ffprobe.Inspect(ctx, i.binary, path)
	if err != nil {
		return nil, services.Wrap(services.ErrProbe, "inspect", "ffprobe", path, err)
	}
	return FromResult(result), nil
}

// FromResult builds a Snapshot from an already-parsed ffprobe result.
func FromResult(result ffprobe.Result) *Snapshot {
	snap := &Snapshot{infos: make(map[int]StreamInfo, len(result.Streams))}
	for _, stream := range result.Streams {
		var mediaType MediaType
		switch strings.ToLower(strings.TrimSpace(stream.CodecType)) {
		case "video":
			mediaType = TypeVideo
			snap.Video = append(snap.Video, stream.Index)
		case "audio":
			mediaType = TypeAudio
			snap.Audio = append(snap.Audio, stream.Index)
		case "subtitle":
			mediaType = TypeSubtitle
			snap.Subtitle = append(snap.Subtitle, stream.Index)
		default:
			continue
		}
		snap.infos[stream.Index] = StreamInfo{
			Index:    stream.Index,
			Type:     mediaType,
			Codec:    strings.ToLower(strings.TrimSpace(stream.CodecName)),
			Language: lang.Normalize(stream.Language()),
		}
	}
	sort.Ints(snap.Video)
	sort.Ints(snap.Audio)
	sort.Ints(snap.Subtitle)
	return snap
}

// Describe returns the description of one stream index.
func (s *Snapshot) Describe(index int) (StreamInfo, error) {
	info, ok := s.infos[index]
	if !ok {
		return StreamInfo{}, services.Wrap(services.ErrNotFound, "inspect", "describe", fmt.Sprintf("stream %d", index), nil)
	}
	return info, nil
}

// StreamCount returns the number of classified streams in the snapshot.
func (s *Snapshot) StreamCount() int {
	return len(s.infos)
}
