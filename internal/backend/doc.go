// Package backend binds the model-side capabilities of a run behind a named
// registry, so deployments can compile in a real codec/sampler pair and
// select it from configuration.
package backend
