package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDataset(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Checkpoint, err = expandPath(c.Paths.Checkpoint); err != nil {
		return fmt.Errorf("paths.checkpoint: %w", err)
	}
	if strings.TrimSpace(c.Paths.SavePath) == "" {
		c.Paths.SavePath = defaultSavePath
	}
	if c.Paths.SavePath, err = expandPath(c.Paths.SavePath); err != nil {
		return fmt.Errorf("paths.save_path: %w", err)
	}
	c.Paths.SavePathSuffix = strings.TrimSpace(c.Paths.SavePathSuffix)
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() error {
	c.Dataset.Modality = strings.ToLower(strings.TrimSpace(c.Dataset.Modality))
	if c.Dataset.Modality == "" {
		c.Dataset.Modality = defaultModality
	}
	var err error
	if c.Dataset.Manifest, err = expandPath(c.Dataset.Manifest); err != nil {
		return fmt.Errorf("dataset.manifest: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	c.Pipeline.Backend = strings.ToLower(strings.TrimSpace(c.Pipeline.Backend))
	if c.Pipeline.Backend == "" {
		c.Pipeline.Backend = defaultBackend
	}
	c.Pipeline.OnCodecError = strings.ToLower(strings.TrimSpace(c.Pipeline.OnCodecError))
	if c.Pipeline.OnCodecError == "" {
		c.Pipeline.OnCodecError = defaultOnCodecError
	}
	c.Pipeline.FFmpegBinary = strings.TrimSpace(c.Pipeline.FFmpegBinary)
	if c.Pipeline.FFmpegBinary == "" {
		c.Pipeline.FFmpegBinary = defaultFFmpegBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// ExpandPath expands a leading tilde and environment variables in path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Clean(os.ExpandEnv(trimmed)), nil
}
