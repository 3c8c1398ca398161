package request

import (
	"loom/internal/tensor"
)

// BackgroundConditioning carries the concatenated background+mask latents.
type BackgroundConditioning struct {
	Latents *tensor.Tensor
}

// AudioConditioning carries the audio embedding and its guidance strength.
type AudioConditioning struct {
	Embedding *tensor.Tensor
	Strength  float64
}

// Conditioning is the modality slot of a generation request. At most one of
// the variants is set; construct it through the variant helpers so the
// exactly-one invariant holds by construction.
type Conditioning struct {
	background *BackgroundConditioning
	audio      *AudioConditioning
}

// NoConditioning returns the empty modality slot.
func NoConditioning() Conditioning { return Conditioning{} }

// WithBackground returns a background-conditioned slot.
func WithBackground(latents *tensor.Tensor) Conditioning {
	return Conditioning{background: &BackgroundConditioning{Latents: latents}}
}

// WithAudio returns an audio-conditioned slot.
func WithAudio(embedding *tensor.Tensor, strength float64) Conditioning {
	return Conditioning{audio: &AudioConditioning{Embedding: embedding, Strength: strength}}
}

// Background returns the background variant if active.
func (c Conditioning) Background() (*BackgroundConditioning, bool) {
	return c.background, c.background != nil
}

// Audio returns the audio variant if active.
func (c Conditioning) Audio() (*AudioConditioning, bool) {
	return c.audio, c.audio != nil
}

// GenerationRequest is the single request schema every modality converges
// on. It is scoped to one sampler invocation.
type GenerationRequest struct {
	Name string

	Prompt         string
	NegativePrompt string

	Width      int
	Height     int
	FrameCount int
	Seed       int64

	LlavaPixels       *tensor.Tensor
	UncondLlavaPixels *tensor.Tensor
	RefLatents        *tensor.Tensor
	UncondRefLatents  *tensor.Tensor

	Conditioning Conditioning

	GuidanceScale           float64
	InferSteps              int
	FlowShift               float64
	LinearQuadraticSchedule bool
	LinearScheduleEnd       int
	SamplesPerPrompt        int
	UseDeepCache            bool
}
