package extract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"unspool/internal/policy"
	"unspool/internal/services"
)

var commandContext = exec.CommandContext

// Operation describes one external extraction invocation.
type Operation struct {
	SourcePath  string
	StreamIndex int
	Action      policy.Action
	OutputPath  string
}

// Runner executes one extraction operation bound to a single source stream.
type Runner interface {
	Extract(ctx context.Context, op Operation) error
}

// FFmpeg runs extraction operations with the ffmpeg CLI.
type FFmpeg struct {
	binary string
}

// NewFFmpeg constructs a runner invoking the given ffmpeg binary.
func NewFFmpeg(binary string) *FFmpeg {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary}
}

// Extract runs one ffmpeg invocation and blocks until it exits.
func (f *FFmpeg) Extract(ctx context.Context, op Operation) error {
	args, err := buildArgs(op)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "extract", "ffmpeg", "", err)
	}

	cmd := commandContext(ctx, f.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "extract", "ffmpeg", detail, err)
	}
	return nil
}

func buildArgs(op Operation) ([]string, error) {
	if strings.TrimSpace(op.SourcePath) == "" {
		return nil, errors.New("source path required")
	}
	if strings.TrimSpace(op.OutputPath) == "" {
		return nil, errors.New("output path required")
	}

	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", op.SourcePath,
		"-map", fmt.Sprintf("0:%d", op.StreamIndex),
	}

	switch op.Action.Kind {
	case policy.KindCopyRemux:
		args = append(args, "-c", "copy")
	case policy.KindTranscode:
		switch op.Action.Target {
		case policy.CodecAAC:
			args = append(args, "-c:a", "aac")
		case policy.CodecWebVTT:
			args = append(args, "-c:s", "webvtt")
		default:
			return nil, fmt.Errorf("no ffmpeg mapping for transcode target %q", op.Action.Target)
		}
	default:
		return nil, fmt.Errorf("action %q is not executable", op.Action.Kind)
	}

	return append(args, op.OutputPath), nil
}

var _ Runner = (*FFmpeg)(nil)
