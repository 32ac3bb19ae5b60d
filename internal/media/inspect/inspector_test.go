package inspect_test

import (
	"context"
	"errors"
	"testing"

	"unspool/internal/media/ffprobe"
	"unspool/internal/media/inspect"
	"unspool/internal/services"
)

func snapshotFixture() *inspect.Snapshot {
	return inspect.FromResult(ffprobe.Result{
		Streams: []ffprobe.Stream{
			{Index: 0, CodecType: "video", CodecName: "h264"},
			{Index: 1, CodecType: "audio", CodecName: "aac", Tags: ffprobe.Tags{Language: "eng"}},
			{Index: 2, CodecType: "audio", CodecName: "dts", Tags: ffprobe.Tags{Language: "jpn"}},
			{Index: 3, CodecType: "subtitle", CodecName: "ass", Tags: ffprobe.Tags{Language: "jpn"}},
			{Index: 4, CodecType: "data", CodecName: "bin_data"},
			{Index: 5, CodecType: "attachment", CodecName: "ttf"},
		},
	})
}

func TestFromResultPartitionsByType(t *testing.T) {
	snap := snapshotFixture()

	if got, want := snap.Video, []int{0}; !equalInts(got, want) {
		t.Fatalf("video indices = %v, want %v", got, want)
	}
	if got, want := snap.Audio, []int{1, 2}; !equalInts(got, want) {
		t.Fatalf("audio indices = %v, want %v", got, want)
	}
	if got, want := snap.Subtitle, []int{3}; !equalInts(got, want) {
		t.Fatalf("subtitle indices = %v, want %v", got, want)
	}
	if snap.StreamCount() != 4 {
		t.Fatalf("expected 4 classified streams, got %d", snap.StreamCount())
	}

	// Every classified index lands in exactly one partition.
	seen := map[int]int{}
	for _, idx := range snap.Video {
		seen[idx]++
	}
	for _, idx := range snap.Audio {
		seen[idx]++
	}
	for _, idx := range snap.Subtitle {
		seen[idx]++
	}
	for idx, count := range seen {
		if count != 1 {
			t.Fatalf("index %d appears %d times", idx, count)
		}
	}
}

func TestDescribeNormalizesLanguage(t *testing.T) {
	snap := snapshotFixture()

	info, err := snap.Describe(1)
	if err != nil {
		t.Fatalf("Describe(1): %v", err)
	}
	if info.Type != inspect.TypeAudio || info.Codec != "aac" || info.Language != "en" {
		t.Fatalf("unexpected stream info: %+v", info)
	}

	info, err = snap.Describe(0)
	if err != nil {
		t.Fatalf("Describe(0): %v", err)
	}
	if info.Language != "und" {
		t.Fatalf("expected und for untagged video stream, got %q", info.Language)
	}
}

func TestDescribeIgnoredIndexFails(t *testing.T) {
	snap := snapshotFixture()

	if _, err := snap.Describe(4); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for data stream, got %v", err)
	}
	if _, err := snap.Describe(99); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown index, got %v", err)
	}
}

func TestProbeFailureCarriesMarker(t *testing.T) {
	inspector := inspect.New("/nonexistent/ffprobe")
	_, err := inspector.Probe(testContext(t), "/nonexistent/file.mkv")
	if err == nil {
		t.Fatal("expected probe failure")
	}
	if !errors.Is(err, services.ErrProbe) {
		t.Fatalf("expected ErrProbe marker, got %v", err)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
