package codec

import (
	"context"
	"math/rand"

	"loom/internal/tensor"
)

// Distribution is the sample-able latent distribution an encoder returns.
// Sampling is stochastic unless the backing distribution is degenerate.
type Distribution interface {
	Sample(rng *rand.Rand) *tensor.Tensor
}

// LatentCodec compresses pixel tensors into latents the sampler consumes.
// Implementations wrap a real VAE backend; the orchestration core only
// depends on this capability surface.
type LatentCodec interface {
	// Encode returns the latent distribution for a pixel tensor. Long-running
	// and device-bound; honours ctx cancellation where the backend allows.
	Encode(ctx context.Context, pixels *tensor.Tensor) (Distribution, error)
	// SetTiling toggles tiled encoding, trading speed for peak memory.
	SetTiling(enabled bool)
	// ScalingFactor is the fixed multiplier matching the codec's trained
	// latent normalization.
	ScalingFactor() float64
}

// WithTiling enables tiling around fn and guarantees release on every exit
// path, including failure, so no tiling state leaks across records.
func WithTiling(c LatentCodec, fn func() error) error {
	c.SetTiling(true)
	defer c.SetTiling(false)
	return fn()
}

// Deterministic wraps a fixed tensor as a degenerate distribution. Used by
// tests and by backends that expose the distribution mean directly.
type Deterministic struct {
	Latents *tensor.Tensor
}

func (d Deterministic) Sample(*rand.Rand) *tensor.Tensor {
	return d.Latents.Clone()
}
