package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains checkpoint, dataset, and output location configuration.
type Paths struct {
	Checkpoint     string `toml:"checkpoint"`
	SavePath       string `toml:"save_path"`
	SavePathSuffix string `toml:"save_path_suffix"`
	LogDir         string `toml:"log_dir"`
}

// Dataset contains conditioning dataset configuration.
type Dataset struct {
	Modality string `toml:"modality"`
	Manifest string `toml:"manifest"`
}

// Generation contains the run-wide sampling parameters passed to every
// generation request unless overridden by background-derived geometry.
type Generation struct {
	Width             int     `toml:"width"`
	Height            int     `toml:"height"`
	FrameCount        int     `toml:"frame_count"`
	FPS               int     `toml:"fps"`
	GuidanceScale     float64 `toml:"guidance_scale"`
	InferSteps        int     `toml:"infer_steps"`
	FlowShift         float64 `toml:"flow_shift"`
	LinearQuadratic   bool    `toml:"use_linear_quadratic_schedule"`
	LinearScheduleEnd int     `toml:"linear_schedule_end"`
	SamplesPerPrompt  int     `toml:"samples_per_prompt"`
	UseDeepCache      bool    `toml:"use_deepcache"`
	Seed              int64   `toml:"seed"`
	AudioStrength     float64 `toml:"audio_strength"`
	PosPromptPrefix   string  `toml:"pos_prompt_prefix"`
	NegPromptPrefix   string  `toml:"neg_prompt_prefix"`
}

// Pipeline contains driver behaviour knobs.
type Pipeline struct {
	// Backend names the registered codec/sampler backend driving generation.
	Backend string `toml:"backend"`
	// OnCodecError selects the recovery policy for latent preparation
	// failures: "abort" stops the run, "skip" advances to the next record.
	OnCodecError string `toml:"on_codec_error"`
	FFmpegBinary string `toml:"ffmpeg_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config centralizes every knob the CLI and pipeline need.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Dataset    Dataset    `toml:"dataset"`
	Generation Generation `toml:"generation"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Logging    Logging    `toml:"logging"`
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// EffectiveSavePath applies the optional suffix to the configured save path.
func (c *Config) EffectiveSavePath() string {
	if c.Paths.SavePathSuffix == "" {
		return c.Paths.SavePath
	}
	return c.Paths.SavePath + "_" + c.Paths.SavePathSuffix
}

// SkipOnCodecError reports whether codec failures skip the record instead of
// aborting the run.
func (c *Config) SkipOnCodecError() bool {
	return c.Pipeline.OnCodecError == "skip"
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.EffectiveSavePath(), c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/loom/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("loom.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}
