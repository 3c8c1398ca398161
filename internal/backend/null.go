package backend

import (
	"context"
	"log/slog"
	"sync/atomic"

	"loom/internal/codec"
	"loom/internal/config"
	"loom/internal/dist"
	"loom/internal/request"
	"loom/internal/sampler"
	"loom/internal/tensor"
)

// The null backend exercises the full pipeline without a model: the loader
// fabricates fixed-size conditioning tensors, the codec emits zero latents
// with real geometry, and the sampler renders flat gray frames. Useful for
// validating manifests, configuration, and artifact plumbing end to end.
// Keep the configured output size small when using it.

func init() {
	Register("null", func(_ *config.Config, _ dist.Context, _ *slog.Logger) (*Backend, error) {
		return &Backend{
			Loader:  nullLoader{},
			Codec:   &nullCodec{},
			Sampler: nullSampler{},
		}, nil
	})
}

const (
	nullFrameSize  = 64
	nullClipFrames = 33

	// Latent geometry matching the real codec: space divides by 8, every 4
	// frames pack into one latent step after the leading frame.
	nullLatentChannels = 4
	nullSpatialStride  = 8
	nullTemporalStride = 4
)

type nullLoader struct{}

func (nullLoader) LoadImage(context.Context, string) (*tensor.Tensor, error) {
	return gray(1, 3, nullFrameSize, nullFrameSize), nil
}

func (nullLoader) LoadClip(context.Context, string) (*tensor.Tensor, error) {
	return gray(1, 3, nullClipFrames, nullFrameSize, nullFrameSize), nil
}

func (nullLoader) LoadAudioEmbedding(context.Context, string) (*tensor.Tensor, error) {
	return gray(1, 4, 16), nil
}

type nullCodec struct {
	tiling atomic.Bool
}

func (c *nullCodec) Encode(_ context.Context, pixels *tensor.Tensor) (codec.Distribution, error) {
	shape := pixels.Shape()
	latentT := (shape[2]-1)/nullTemporalStride + 1
	latentH := max(shape[3]/nullSpatialStride, 1)
	latentW := max(shape[4]/nullSpatialStride, 1)
	return codec.Deterministic{
		Latents: tensor.New(shape[0], nullLatentChannels, latentT, latentH, latentW),
	}, nil
}

func (c *nullCodec) SetTiling(enabled bool) { c.tiling.Store(enabled) }

func (c *nullCodec) ScalingFactor() float64 { return 0.476986 }

type nullSampler struct{}

func (nullSampler) Generate(_ context.Context, req *request.GenerationRequest) (*sampler.Result, error) {
	samples := make([]*tensor.Tensor, 0, req.SamplesPerPrompt)
	for i := 0; i < req.SamplesPerPrompt; i++ {
		samples = append(samples, gray(3, req.FrameCount, req.Height, req.Width))
	}
	return &sampler.Result{Samples: samples}, nil
}

func gray(shape ...int) *tensor.Tensor {
	t := tensor.New(shape...)
	data := t.Data()
	for i := range data {
		data[i] = 0.5
	}
	return t
}
