// Package sampler declares the diffusion sampler capability the driver
// invokes. Real deployments bind a model backend; the orchestration core
// never looks inside it.
package sampler

import (
	"context"

	"loom/internal/request"
	"loom/internal/tensor"
)

// Result is the ordered output of one generation call. Its length equals the
// request's SamplesPerPrompt. Consumed immediately by the emitter and not
// retained.
type Result struct {
	// Samples are [C,T,H,W] video tensors in [0,1].
	Samples []*tensor.Tensor
}

// Sampler generates video samples from a unified request. Long-running and
// device-bound; may participate in distributed collectives, so every rank in
// a group must call Generate for every record in its partition even when it
// will not emit output.
type Sampler interface {
	Generate(ctx context.Context, req *request.GenerationRequest) (*Result, error)
}
