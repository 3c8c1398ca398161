package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Manifest = "/data/manifest.json"
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
checkpoint = "/models/ckpt"
save_path = "/out"
save_path_suffix = "v2"

[dataset]
modality = "audio"
manifest = "/data/manifest.json"

[generation]
guidance_scale = 9.0
infer_steps = 30
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Dataset.Modality != "audio" {
		t.Fatalf("unexpected modality %q", cfg.Dataset.Modality)
	}
	if cfg.Generation.GuidanceScale != 9.0 || cfg.Generation.InferSteps != 30 {
		t.Fatalf("generation overrides not applied: %+v", cfg.Generation)
	}
	// Untouched fields keep defaults.
	if cfg.Generation.FPS != defaultFPS {
		t.Fatalf("expected default fps, got %d", cfg.Generation.FPS)
	}
	if got := cfg.EffectiveSavePath(); got != "/out_v2" {
		t.Fatalf("expected suffixed save path, got %q", got)
	}
}

func TestValidateRejectsBadModality(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Manifest = "/data/manifest.json"
	cfg.Dataset.Modality = "text"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected modality validation error")
	}
}

func TestValidateRejectsBadCodecPolicy(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Manifest = "/data/manifest.json"
	cfg.Pipeline.OnCodecError = "retry"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected codec policy validation error")
	}
}

func TestSkipOnCodecError(t *testing.T) {
	cfg := Default()
	if cfg.SkipOnCodecError() {
		t.Fatal("default policy must abort")
	}
	cfg.Pipeline.OnCodecError = "skip"
	if !cfg.SkipOnCodecError() {
		t.Fatal("skip policy not honoured")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := expandPath("~/models")
	if err != nil {
		t.Fatalf("expandPath failed: %v", err)
	}
	if got != filepath.Join(home, "models") {
		t.Fatalf("unexpected expansion %q", got)
	}
}
