package request

import (
	"loom/internal/config"
	"loom/internal/dataset"
	"loom/internal/latent"
)

// Build assembles the generation request for one record. Pure: it applies
// the fixed prompt prefixes, copies the run-wide parameters verbatim, and
// resolves geometry as derived-if-present-else-configured. Inputs are
// assumed validated upstream.
func Build(record *dataset.Record, bundle *latent.Bundle, params config.Generation) *GenerationRequest {
	req := &GenerationRequest{
		Name:           record.Name,
		Prompt:         params.PosPromptPrefix + record.Prompt,
		NegativePrompt: params.NegPromptPrefix + record.NegativePrompt,

		Width:      params.Width,
		Height:     params.Height,
		FrameCount: params.FrameCount,
		Seed:       record.Seed,

		LlavaPixels:       record.LlavaPixels,
		UncondLlavaPixels: record.UncondLlavaPixels,
		RefLatents:        bundle.RefLatents,
		UncondRefLatents:  bundle.UncondRefLatents,

		Conditioning: NoConditioning(),

		GuidanceScale:           params.GuidanceScale,
		InferSteps:              params.InferSteps,
		FlowShift:               params.FlowShift,
		LinearQuadraticSchedule: params.LinearQuadratic,
		LinearScheduleEnd:       params.LinearScheduleEnd,
		SamplesPerPrompt:        params.SamplesPerPrompt,
		UseDeepCache:            params.UseDeepCache,
	}

	switch {
	case bundle.HasGeometry():
		req.Width = bundle.Width
		req.Height = bundle.Height
		req.FrameCount = bundle.FrameCount
		req.Conditioning = WithBackground(bundle.Background)
	case record.HasAudio():
		req.Conditioning = WithAudio(record.AudioEmbedding, params.AudioStrength)
	}

	return req
}
