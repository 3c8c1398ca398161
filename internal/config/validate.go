package config

import (
	"errors"
	"fmt"
)

var validModalities = map[string]struct{}{
	"image": {},
	"video": {},
	"audio": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDataset() error {
	if _, ok := validModalities[c.Dataset.Modality]; !ok {
		return fmt.Errorf("dataset.modality must be one of image, video, audio (got %q)", c.Dataset.Modality)
	}
	if c.Dataset.Manifest == "" {
		return errors.New("dataset.manifest must be set")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	g := c.Generation
	if g.Width <= 0 || g.Height <= 0 {
		return errors.New("generation.width and generation.height must be positive")
	}
	if g.FrameCount <= 0 {
		return errors.New("generation.frame_count must be positive")
	}
	if g.FPS <= 0 {
		return errors.New("generation.fps must be positive")
	}
	if g.GuidanceScale < 0 {
		return errors.New("generation.guidance_scale must not be negative")
	}
	if g.InferSteps <= 0 {
		return errors.New("generation.infer_steps must be positive")
	}
	if g.SamplesPerPrompt <= 0 {
		return errors.New("generation.samples_per_prompt must be positive")
	}
	if g.LinearQuadratic && g.LinearScheduleEnd <= 0 {
		return errors.New("generation.linear_schedule_end must be positive when the linear-quadratic schedule is enabled")
	}
	if g.AudioStrength < 0 {
		return errors.New("generation.audio_strength must not be negative")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Backend == "" {
		return errors.New("pipeline.backend must be set")
	}
	switch c.Pipeline.OnCodecError {
	case "abort", "skip":
		return nil
	default:
		return fmt.Errorf("pipeline.on_codec_error must be \"abort\" or \"skip\" (got %q)", c.Pipeline.OnCodecError)
	}
}
