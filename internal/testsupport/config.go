// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"unspool/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.IncomingDir = filepath.Join(base, "incoming")
	cfg.Paths.OutputDir = filepath.Join(base, "media")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithFFmpeg overrides the ffmpeg binary on the test config.
func WithFFmpeg(binary string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tools.FFmpeg = binary
	}
}

// WithFFprobe overrides the ffprobe binary on the test config.
func WithFFprobe(binary string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tools.FFprobe = binary
	}
}

// WithWorkers sets the daemon worker count on the test config.
func WithWorkers(count int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.Workers = count
	}
}
