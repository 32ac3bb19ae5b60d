package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"unspool/internal/config"
	"unspool/internal/extract"
	"unspool/internal/logging"
	"unspool/internal/manifest"
	"unspool/internal/media/inspect"
	"unspool/internal/policy"
	"unspool/internal/services"
)

// Inspector abstracts container probing.
type Inspector interface {
	Probe(ctx context.Context, path string) (*inspect.Snapshot, error)
}

// Pipeline processes one title at a time: probe, classify, extract, publish.
type Pipeline struct {
	cfg       *config.Config
	inspector Inspector
	runner    extract.Runner
	// base is the untagged logger handed to sub-components that attach
	// their own component field.
	base   *slog.Logger
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithInspector overrides the container inspector.
func WithInspector(inspector Inspector) Option {
	return func(p *Pipeline) {
		if inspector != nil {
			p.inspector = inspector
		}
	}
}

// WithRunner overrides the extraction runner.
func WithRunner(runner extract.Runner) Option {
	return func(p *Pipeline) {
		if runner != nil {
			p.runner = runner
		}
	}
}

// New constructs a pipeline with production ffprobe/ffmpeg wiring.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:       cfg,
		inspector: inspect.New(cfg.FFprobeBinary()),
		runner:    extract.NewFFmpeg(cfg.FFmpegBinary()),
		base:      logger,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes one processed title.
type Result struct {
	TitleID   string
	OutputDir string
	// Playlist is the playback reference relative to the output root.
	Playlist  string
	Artifacts []manifest.Artifact
	Skipped   int
}

// Inspect probes the source container. It creates nothing on disk, so a probe
// failure leaves the output root untouched.
func (p *Pipeline) Inspect(ctx context.Context, sourcePath string) (*inspect.Snapshot, error) {
	ctx = logging.WithStage(ctx, "probe")
	logger := logging.WithContext(ctx, p.logger)

	snap, err := p.inspector.Probe(ctx, sourcePath)
	if err != nil {
		logger.Error("container probe failed", logging.Error(err), logging.String("source", sourcePath))
		return nil, err
	}
	logger.Info("container probed",
		logging.Int("video", len(snap.Video)),
		logging.Int("audio", len(snap.Audio)),
		logging.Int("subtitle", len(snap.Subtitle)),
	)
	return snap, nil
}

// Extract runs one extraction operation per classified stream of snap into a
// staging directory, then publishes the title directory under the output root
// with a single rename.
func (p *Pipeline) Extract(ctx context.Context, sourcePath, titleID string, snap *inspect.Snapshot) (*Result, error) {
	ctx = logging.WithStage(ctx, "extract")
	logger := logging.WithContext(ctx, p.logger)

	stagingDir := filepath.Join(p.cfg.StagingDir(), titleID)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrExtraction, "extract", "staging", stagingDir, err)
	}

	steps := extract.Plan(snap, p.logger)
	skipped := 0
	for _, step := range steps {
		if step.Action.Kind == policy.KindSkip {
			skipped++
		}
	}

	orchestrator := extract.NewOrchestrator(p.runner, p.base)
	artifacts, err := orchestrator.Run(ctx, sourcePath, stagingDir, steps)
	if err != nil {
		// Staging directory is retained for inspection; it is never published.
		logger.Error("extraction aborted",
			logging.Error(err),
			logging.Int("artifacts_written", len(artifacts)),
			logging.String("staging_dir", stagingDir),
		)
		return nil, err
	}

	outputDir := filepath.Join(p.cfg.Paths.OutputDir, titleID)
	if err := publish(stagingDir, outputDir); err != nil {
		return nil, services.Wrap(services.ErrExtraction, "extract", "publish", titleID, err)
	}

	for i := range artifacts {
		artifacts[i].Path = filepath.Join(outputDir, artifacts[i].Name())
	}

	result := &Result{
		TitleID:   titleID,
		OutputDir: outputDir,
		Playlist:  titleID + "/" + manifest.CombinedVideoName,
		Artifacts: artifacts,
		Skipped:   skipped,
	}
	logger.Info("title published",
		logging.Int("artifacts", len(artifacts)),
		logging.Int("skipped", skipped),
		logging.String("output_dir", outputDir),
	)
	return result, nil
}

// Process runs the full flow for one source container.
func (p *Pipeline) Process(ctx context.Context, sourcePath, titleID string) (*Result, error) {
	ctx = services.WithTitleID(ctx, titleID)

	snap, err := p.Inspect(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	return p.Extract(ctx, sourcePath, titleID, snap)
}

func publish(stagingDir, outputDir string) error {
	if _, err := os.Stat(outputDir); err == nil {
		return fmt.Errorf("title directory %s already exists", outputDir)
	}
	if err := os.MkdirAll(filepath.Dir(outputDir), 0o755); err != nil {
		return err
	}
	return os.Rename(stagingDir, outputDir)
}
