package extract

import (
	"context"
	"fmt"
	"log/slog"

	"unspool/internal/logging"
	"unspool/internal/manifest"
	"unspool/internal/media/inspect"
	"unspool/internal/policy"
	"unspool/internal/services"
)

// Step pairs one classified stream with its extraction decision.
type Step struct {
	Info   inspect.StreamInfo
	Action policy.Action
}

// Plan classifies every stream in the snapshot and fixes the execution order:
// video, then audio, then subtitles, ascending index within each type. Indexes
// the snapshot lists but cannot describe are logged and left out of the plan.
func Plan(snap *inspect.Snapshot, logger *slog.Logger) []Step {
	if logger == nil {
		logger = logging.NewNop()
	}
	steps := make([]Step, 0, snap.StreamCount())
	for _, indices := range [][]int{snap.Video, snap.Audio, snap.Subtitle} {
		for _, index := range indices {
			info, err := snap.Describe(index)
			if err != nil {
				logger.Debug("stream index omitted from plan",
					logging.Int(logging.FieldStreamIndex, index),
					logging.Error(err))
				continue
			}
			steps = append(steps, Step{Info: info, Action: policy.Classify(info)})
		}
	}
	return steps
}

// Orchestrator drives one extraction operation per planned step.
type Orchestrator struct {
	runner Runner
	logger *slog.Logger
}

// NewOrchestrator constructs an orchestrator around the given runner.
func NewOrchestrator(runner Runner, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		runner: runner,
		logger: logging.NewComponentLogger(logger, "extract"),
	}
}

// Run executes the planned steps strictly in order, writing artifacts into
// titleDir. Skipped steps produce nothing. The first failed operation aborts
// the remaining steps; artifacts already written are left in place.
//
// Multiple video streams all target the combined output filename, so only the
// last one to complete is retained. Known naming limitation.
func (o *Orchestrator) Run(ctx context.Context, sourcePath, titleDir string, steps []Step) ([]manifest.Artifact, error) {
	artifacts := make([]manifest.Artifact, 0, len(steps))

	for _, step := range steps {
		stepLogger := o.logger.With(
			logging.Int(logging.FieldStreamIndex, step.Info.Index),
			logging.String("codec", step.Info.Codec),
			logging.String("language", step.Info.Language),
		)

		if step.Action.Kind == policy.KindSkip {
			stepLogger.Info("stream skipped", logging.String("reason", step.Action.Reason))
			continue
		}

		artifact, err := artifactFor(step, titleDir)
		if err != nil {
			return artifacts, services.Wrap(services.ErrExtraction, "extract", "plan", "", err)
		}

		op := Operation{
			SourcePath:  sourcePath,
			StreamIndex: step.Info.Index,
			Action:      step.Action,
			OutputPath:  artifact.Path,
		}
		if err := o.runner.Extract(ctx, op); err != nil {
			stepLogger.Error("extraction operation failed", logging.Error(err))
			return artifacts, services.Wrap(services.ErrExtraction, "extract", "run",
				fmt.Sprintf("stream %d", step.Info.Index), err)
		}

		stepLogger.Info("artifact written",
			logging.String("artifact", artifact.Name()),
			logging.String("action", string(step.Action.Kind)),
		)
		artifacts = append(artifacts, artifact)
	}

	return artifacts, nil
}

func artifactFor(step Step, titleDir string) (manifest.Artifact, error) {
	switch step.Info.Type {
	case inspect.TypeVideo:
		return manifest.Artifact{
			Kind:        manifest.KindVideo,
			Language:    step.Info.Language,
			Path:        manifest.CombinedVideoPath(titleDir),
			StreamIndex: step.Info.Index,
		}, nil
	case inspect.TypeAudio:
		return manifest.Artifact{
			Kind:        manifest.KindAudio,
			Language:    step.Info.Language,
			Path:        manifest.AudioTrackPath(titleDir, step.Info.Language),
			StreamIndex: step.Info.Index,
		}, nil
	case inspect.TypeSubtitle:
		return manifest.Artifact{
			Kind:        manifest.KindSubtitle,
			Language:    step.Info.Language,
			Path:        manifest.SubtitleTrackPath(titleDir, step.Info.Language),
			StreamIndex: step.Info.Index,
		}, nil
	default:
		return manifest.Artifact{}, fmt.Errorf("stream %d has no artifact mapping", step.Info.Index)
	}
}
