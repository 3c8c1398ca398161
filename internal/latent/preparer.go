package latent

import (
	"context"
	"log/slog"
	"math/rand"

	"loom/internal/codec"
	"loom/internal/dataset"
	"loom/internal/logging"
	"loom/internal/services"
	"loom/internal/tensor"
)

// Latent geometry constants: the codec downsamples space by 8x and packs
// every 4 frames into one latent step (plus the leading frame).
const (
	spatialStride  = 8
	temporalStride = 4
)

// Bundle holds the latents derived from one conditioning record. It lives
// strictly within the processing of that record and is discarded after the
// generation request is built.
type Bundle struct {
	RefLatents       *tensor.Tensor
	UncondRefLatents *tensor.Tensor

	// Background is the channel-axis concatenation of background-clip and
	// mask latents, nil unless background conditioning is present.
	Background *tensor.Tensor

	// Derived output geometry, valid only when Background is set. When
	// present it overrides the statically configured size and frame count.
	Height     int
	Width      int
	FrameCount int
}

// HasGeometry reports whether derived geometry overrides the configured one.
func (b *Bundle) HasGeometry() bool { return b.Background != nil }

// Preparer converts raw conditioning tensors into latent bundles through the
// codec capability.
type Preparer struct {
	codec  codec.LatentCodec
	logger *slog.Logger
}

// NewPreparer constructs a preparer over the given codec.
func NewPreparer(c codec.LatentCodec, logger *slog.Logger) *Preparer {
	return &Preparer{codec: c, logger: logging.NewComponentLogger(logger, "latent-preparer")}
}

// Prepare encodes the record's reference image (and background clip when
// present) into a latent bundle. Tiling is held for exactly the span of the
// encode calls and released on every exit path.
func (p *Preparer) Prepare(ctx context.Context, record *dataset.Record) (*Bundle, error) {
	ref := record.RefPixels.Clone().RescaleToSigned()
	refClip, err := ref.UnsqueezeTime()
	if err != nil {
		return nil, services.Wrap(services.ErrCodec, "preparing", "reshape reference", record.Name, err)
	}

	rng := rand.New(rand.NewSource(record.Seed))
	bundle := &Bundle{}

	err = codec.WithTiling(p.codec, func() error {
		var encodeErr error
		if bundle.RefLatents, encodeErr = p.encode(ctx, refClip, rng); encodeErr != nil {
			return services.Wrap(services.ErrCodec, "preparing", "encode reference", record.Name, encodeErr)
		}
		if bundle.UncondRefLatents, encodeErr = p.encode(ctx, tensor.OnesLike(refClip), rng); encodeErr != nil {
			return services.Wrap(services.ErrCodec, "preparing", "encode unconditioned reference", record.Name, encodeErr)
		}

		if record.HasBackground() {
			if encodeErr = p.prepareBackground(ctx, record, bundle, rng); encodeErr != nil {
				return encodeErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	factor := float32(p.codec.ScalingFactor())
	bundle.RefLatents.Scale(factor)
	bundle.UncondRefLatents.Scale(factor)

	if bundle.HasGeometry() {
		p.logger.Debug("derived geometry from background latents",
			logging.String(logging.FieldRecord, record.Name),
			logging.Int("height", bundle.Height),
			logging.Int("width", bundle.Width),
			logging.Int("frame_count", bundle.FrameCount),
		)
	}
	return bundle, nil
}

func (p *Preparer) prepareBackground(ctx context.Context, record *dataset.Record, bundle *Bundle, rng *rand.Rand) error {
	bgLatents, err := p.encode(ctx, record.Background.Clone().RescaleToSigned(), rng)
	if err != nil {
		return services.Wrap(services.ErrCodec, "preparing", "encode background", record.Name, err)
	}
	maskLatents, err := p.encode(ctx, record.Mask.Clone().RescaleToSigned(), rng)
	if err != nil {
		return services.Wrap(services.ErrCodec, "preparing", "encode mask", record.Name, err)
	}

	combined, err := tensor.ConcatChannels(bgLatents, maskLatents)
	if err != nil {
		// Shape drift between background and mask latents must surface as a
		// record failure, never a truncated request.
		return services.Wrap(services.ErrCodec, "preparing", "concat background latents", record.Name, err)
	}
	combined.Scale(float32(p.codec.ScalingFactor()))

	bundle.Background = combined
	bundle.Height = combined.Dim(3) * spatialStride
	bundle.Width = combined.Dim(4) * spatialStride
	bundle.FrameCount = (combined.Dim(2)-1)*temporalStride + 1
	return nil
}

func (p *Preparer) encode(ctx context.Context, pixels *tensor.Tensor, rng *rand.Rand) (*tensor.Tensor, error) {
	dist, err := p.codec.Encode(ctx, pixels)
	if err != nil {
		return nil, err
	}
	return dist.Sample(rng), nil
}
