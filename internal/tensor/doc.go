// Package tensor provides the small dense-tensor vocabulary the orchestration
// pipeline needs to move pixel and latent data between the conditioning
// source, the latent codec, and the sampler. It is not a math library; only
// the handful of shape and rescale operations the pipeline performs live here.
package tensor
