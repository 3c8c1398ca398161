package dataset

import (
	"loom/internal/tensor"
)

// Modality selects which conditioning dataset variant a run draws from.
type Modality string

const (
	ModalityImage Modality = "image"
	ModalityVideo Modality = "video"
	ModalityAudio Modality = "audio"
)

// ParseModality converts a config string into a Modality.
func ParseModality(value string) (Modality, bool) {
	switch Modality(value) {
	case ModalityImage, ModalityVideo, ModalityAudio:
		return Modality(value), true
	default:
		return "", false
	}
}

// Record is one conditioning dataset item. It is immutable once produced by
// a Source and consumed exactly once by the latent preparer. Fields that are
// irrelevant to the active modality stay nil.
type Record struct {
	Name     string
	SaveName string

	Prompt         string
	NegativePrompt string
	Seed           int64

	// RefPixels is the reference image as a [B,C,H,W] tensor in [0,1].
	RefPixels *tensor.Tensor
	// LlavaPixels and UncondLlavaPixels feed the text-image embedding tower.
	LlavaPixels       *tensor.Tensor
	UncondLlavaPixels *tensor.Tensor

	// Background and Mask are [B,C,T,H,W] clips, present for video
	// conditioning only.
	Background *tensor.Tensor
	Mask       *tensor.Tensor

	// AudioEmbedding is present for audio conditioning; AudioPath points at
	// the audio asset muxed into the final artifact when resolvable.
	AudioEmbedding *tensor.Tensor
	AudioPath      string
}

// HasBackground reports whether background conditioning drives this record.
func (r *Record) HasBackground() bool {
	return r.Background != nil && r.Mask != nil
}

// HasAudio reports whether audio conditioning drives this record.
func (r *Record) HasAudio() bool {
	return r.AudioEmbedding != nil
}
