package extract

import (
	"strings"
	"testing"

	"unspool/internal/policy"
)

func TestBuildArgsCopyRemux(t *testing.T) {
	args, err := buildArgs(Operation{
		SourcePath:  "/in/movie.mkv",
		StreamIndex: 0,
		Action:      policy.CopyRemux(),
		OutputPath:  "/out/master.mp4",
	})
	if err != nil {
		t.Fatalf("buildArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	for _, fragment := range []string{"-i /in/movie.mkv", "-map 0:0", "-c copy", "/out/master.mp4"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("args %q missing %q", joined, fragment)
		}
	}
}

func TestBuildArgsTranscodeTargets(t *testing.T) {
	args, err := buildArgs(Operation{
		SourcePath:  "/in/movie.mkv",
		StreamIndex: 2,
		Action:      policy.TranscodeTo(policy.CodecAAC),
		OutputPath:  "/out/audio_ja.aac",
	})
	if err != nil {
		t.Fatalf("buildArgs: %v", err)
	}
	if joined := strings.Join(args, " "); !strings.Contains(joined, "-map 0:2 -c:a aac") {
		t.Fatalf("unexpected aac args: %q", joined)
	}

	args, err = buildArgs(Operation{
		SourcePath:  "/in/movie.mkv",
		StreamIndex: 3,
		Action:      policy.TranscodeTo(policy.CodecWebVTT),
		OutputPath:  "/out/sub_ja.vtt",
	})
	if err != nil {
		t.Fatalf("buildArgs: %v", err)
	}
	if joined := strings.Join(args, " "); !strings.Contains(joined, "-c:s webvtt") {
		t.Fatalf("unexpected webvtt args: %q", joined)
	}
}

func TestBuildArgsRejectsUnrunnableOperations(t *testing.T) {
	if _, err := buildArgs(Operation{SourcePath: "/in.mkv", OutputPath: "/out", Action: policy.Skip("unsupported")}); err == nil {
		t.Fatal("expected error for skip action")
	}
	if _, err := buildArgs(Operation{SourcePath: "/in.mkv", OutputPath: "/out", Action: policy.TranscodeTo("flac")}); err == nil {
		t.Fatal("expected error for unmapped transcode target")
	}
	if _, err := buildArgs(Operation{Action: policy.CopyRemux()}); err == nil {
		t.Fatal("expected error for missing paths")
	}
}
