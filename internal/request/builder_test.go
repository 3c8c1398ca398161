package request_test

import (
	"testing"

	"loom/internal/config"
	"loom/internal/dataset"
	"loom/internal/latent"
	"loom/internal/request"
	"loom/internal/tensor"
)

func runParams() config.Generation {
	return config.Generation{
		Width:             720,
		Height:            1280,
		FrameCount:        129,
		GuidanceScale:     7.5,
		InferSteps:        50,
		FlowShift:         5.0,
		SamplesPerPrompt:  1,
		AudioStrength:     0.8,
		PosPromptPrefix:   "cinematic, ",
		NegPromptPrefix:   "blurry, ",
		LinearQuadratic:   true,
		LinearScheduleEnd: 25,
	}
}

func baseRecord() *dataset.Record {
	return &dataset.Record{
		Name:              "clip-1",
		SaveName:          "clip-1",
		Prompt:            "a dancer on a rooftop",
		NegativePrompt:    "low quality",
		Seed:              99,
		LlavaPixels:       tensor.Ones(1, 3, 8, 8),
		UncondLlavaPixels: tensor.Ones(1, 3, 8, 8),
	}
}

func baseBundle() *latent.Bundle {
	return &latent.Bundle{
		RefLatents:       tensor.Ones(1, 4, 1, 8, 8),
		UncondRefLatents: tensor.Ones(1, 4, 1, 8, 8),
	}
}

func TestBuildAppliesPrefixesAndParams(t *testing.T) {
	req := request.Build(baseRecord(), baseBundle(), runParams())

	if req.Prompt != "cinematic, a dancer on a rooftop" {
		t.Fatalf("positive prefix not applied: %q", req.Prompt)
	}
	if req.NegativePrompt != "blurry, low quality" {
		t.Fatalf("negative prefix not applied: %q", req.NegativePrompt)
	}
	if req.Seed != 99 {
		t.Fatalf("seed not carried: %d", req.Seed)
	}
	if req.GuidanceScale != 7.5 || req.InferSteps != 50 || req.FlowShift != 5.0 {
		t.Fatalf("scalar params not copied verbatim: %+v", req)
	}
	if !req.LinearQuadraticSchedule || req.LinearScheduleEnd != 25 {
		t.Fatalf("schedule params not copied: %+v", req)
	}
}

func TestBuildUsesConfiguredGeometryWithoutBackground(t *testing.T) {
	req := request.Build(baseRecord(), baseBundle(), runParams())

	if req.Width != 720 || req.Height != 1280 || req.FrameCount != 129 {
		t.Fatalf("configured geometry must apply unchanged: %dx%d/%d", req.Width, req.Height, req.FrameCount)
	}
	if _, ok := req.Conditioning.Background(); ok {
		t.Fatal("no background conditioning expected")
	}
	if _, ok := req.Conditioning.Audio(); ok {
		t.Fatal("no audio conditioning expected")
	}
}

func TestBuildDerivedGeometryOverridesConfigured(t *testing.T) {
	bundle := baseBundle()
	bundle.Background = tensor.Ones(1, 8, 2, 8, 8)
	bundle.Height = 64
	bundle.Width = 64
	bundle.FrameCount = 5

	req := request.Build(baseRecord(), bundle, runParams())

	if req.Width != 64 || req.Height != 64 || req.FrameCount != 5 {
		t.Fatalf("derived geometry must override configured values: %dx%d/%d", req.Width, req.Height, req.FrameCount)
	}
	bg, ok := req.Conditioning.Background()
	if !ok || bg.Latents == nil {
		t.Fatal("background conditioning missing from request")
	}
	if _, ok := req.Conditioning.Audio(); ok {
		t.Fatal("background and audio conditioning must not coexist")
	}
}

func TestBuildAudioConditioning(t *testing.T) {
	record := baseRecord()
	record.AudioEmbedding = tensor.Ones(1, 4, 16)
	record.AudioPath = "/data/a.wav"

	req := request.Build(record, baseBundle(), runParams())

	audio, ok := req.Conditioning.Audio()
	if !ok {
		t.Fatal("audio conditioning missing from request")
	}
	if audio.Strength != 0.8 {
		t.Fatalf("audio strength not copied: %f", audio.Strength)
	}
	if _, ok := req.Conditioning.Background(); ok {
		t.Fatal("audio request must not carry background latents")
	}
	// Audio conditioning keeps the configured geometry.
	if req.Width != 720 || req.FrameCount != 129 {
		t.Fatalf("audio requests must keep configured geometry: %+v", req)
	}
}
