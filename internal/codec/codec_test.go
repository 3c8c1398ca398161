package codec

import (
	"context"
	"errors"
	"testing"

	"loom/internal/tensor"
)

type tilingCodec struct {
	tiling  bool
	history []bool
}

func (c *tilingCodec) Encode(context.Context, *tensor.Tensor) (Distribution, error) {
	return Deterministic{Latents: tensor.Ones(1, 1, 1, 1, 1)}, nil
}

func (c *tilingCodec) SetTiling(enabled bool) {
	c.tiling = enabled
	c.history = append(c.history, enabled)
}

func (c *tilingCodec) ScalingFactor() float64 { return 1 }

func TestWithTilingReleasesOnSuccess(t *testing.T) {
	c := &tilingCodec{}
	if err := WithTiling(c, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.tiling {
		t.Fatal("tiling must be released after the scope")
	}
	if len(c.history) != 2 || !c.history[0] || c.history[1] {
		t.Fatalf("expected enable-then-disable, got %v", c.history)
	}
}

func TestWithTilingReleasesOnError(t *testing.T) {
	c := &tilingCodec{}
	boom := errors.New("encode failed")
	if err := WithTiling(c, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected error to propagate, got %v", err)
	}
	if c.tiling {
		t.Fatal("tiling must be released on the failure path")
	}
}

func TestWithTilingReleasesOnPanic(t *testing.T) {
	c := &tilingCodec{}
	func() {
		defer func() { _ = recover() }()
		_ = WithTiling(c, func() error { panic("encode blew up") })
	}()
	if c.tiling {
		t.Fatal("tiling must be released when the scope panics")
	}
}
