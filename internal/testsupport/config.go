// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"loom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Checkpoint = filepath.Join(base, "ckpt")
	cfg.Paths.SavePath = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Dataset.Manifest = filepath.Join(base, "manifest.json")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithModality overrides the dataset modality on the test config.
func WithModality(modality string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Dataset.Modality = modality
	}
}

// WithCodecSkipPolicy switches codec failures from abort to skip.
func WithCodecSkipPolicy() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.OnCodecError = "skip"
	}
}
