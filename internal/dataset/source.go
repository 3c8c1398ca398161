package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"loom/internal/services"
	"loom/internal/tensor"
)

// Loader decodes media assets into pixel tensors. Real deployments back this
// with the model's preprocessing stack; tests use in-memory fakes.
type Loader interface {
	// LoadImage decodes an image into a [B,C,H,W] tensor in [0,1].
	LoadImage(ctx context.Context, path string) (*tensor.Tensor, error)
	// LoadClip decodes a video into a [B,C,T,H,W] tensor in [0,1].
	LoadClip(ctx context.Context, path string) (*tensor.Tensor, error)
	// LoadAudioEmbedding decodes precomputed audio conditioning features.
	LoadAudioEmbedding(ctx context.Context, path string) (*tensor.Tensor, error)
}

// Source yields the conditioning records of one dataset in a stable order.
type Source interface {
	Open(ctx context.Context) ([]*Record, error)
}

// manifestEntry is the JSON shape of one dataset item.
type manifestEntry struct {
	Name           string `json:"name"`
	SaveName       string `json:"save_name"`
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Seed           *int64 `json:"seed"`

	RefImage        string `json:"ref_image"`
	LlavaImage      string `json:"llava_image"`
	BackgroundVideo string `json:"background_video"`
	MaskVideo       string `json:"mask_video"`
	AudioEmbedding  string `json:"audio_embedding"`
	Audio           string `json:"audio"`
}

// ManifestSource reads a JSON manifest and materializes conditioning records
// for one modality. Asset paths in the manifest resolve relative to the
// manifest's directory.
type ManifestSource struct {
	path        string
	modality    Modality
	loader      Loader
	defaultSeed int64
}

// NewManifestSource constructs a source over the manifest at path.
func NewManifestSource(path string, modality Modality, loader Loader, defaultSeed int64) *ManifestSource {
	return &ManifestSource{path: path, modality: modality, loader: loader, defaultSeed: defaultSeed}
}

// Open parses and validates the manifest, loads each record's conditioning
// payload, and returns the full ordered record sequence. Malformed manifests
// and missing assets surface as source errors.
func (s *ManifestSource) Open(ctx context.Context) ([]*Record, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, services.Wrap(services.ErrSource, "dataset", "open manifest", s.path, err)
	}

	var entries []manifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, services.Wrap(services.ErrSource, "dataset", "parse manifest", s.path, err)
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrSource, "dataset", "parse manifest", "manifest lists no records", nil)
	}

	base := filepath.Dir(s.path)
	records := make([]*Record, 0, len(entries))
	for i, entry := range entries {
		record, err := s.materialize(ctx, base, i, entry)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *ManifestSource) materialize(ctx context.Context, base string, index int, entry manifestEntry) (*Record, error) {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return nil, services.Wrap(services.ErrSource, "dataset", "validate record",
			fmt.Sprintf("entry %d has no name", index), nil)
	}
	saveName := strings.TrimSpace(entry.SaveName)
	if saveName == "" {
		saveName = name
	}

	record := &Record{
		Name:           name,
		SaveName:       saveName,
		Prompt:         entry.Prompt,
		NegativePrompt: entry.NegativePrompt,
		Seed:           s.defaultSeed,
	}
	if entry.Seed != nil {
		record.Seed = *entry.Seed
	}

	refPath, err := s.requireAsset(base, name, "ref_image", entry.RefImage)
	if err != nil {
		return nil, err
	}
	if record.RefPixels, err = s.loader.LoadImage(ctx, refPath); err != nil {
		return nil, services.Wrap(services.ErrSource, "dataset", "load reference image", name, err)
	}

	llavaPath := refPath
	if strings.TrimSpace(entry.LlavaImage) != "" {
		if llavaPath, err = s.requireAsset(base, name, "llava_image", entry.LlavaImage); err != nil {
			return nil, err
		}
	}
	if record.LlavaPixels, err = s.loader.LoadImage(ctx, llavaPath); err != nil {
		return nil, services.Wrap(services.ErrSource, "dataset", "load llava image", name, err)
	}
	record.UncondLlavaPixels = tensor.OnesLike(record.LlavaPixels)

	switch s.modality {
	case ModalityVideo:
		bgPath, err := s.requireAsset(base, name, "background_video", entry.BackgroundVideo)
		if err != nil {
			return nil, err
		}
		maskPath, err := s.requireAsset(base, name, "mask_video", entry.MaskVideo)
		if err != nil {
			return nil, err
		}
		if record.Background, err = s.loader.LoadClip(ctx, bgPath); err != nil {
			return nil, services.Wrap(services.ErrSource, "dataset", "load background clip", name, err)
		}
		if record.Mask, err = s.loader.LoadClip(ctx, maskPath); err != nil {
			return nil, services.Wrap(services.ErrSource, "dataset", "load mask clip", name, err)
		}
	case ModalityAudio:
		embPath, err := s.requireAsset(base, name, "audio_embedding", entry.AudioEmbedding)
		if err != nil {
			return nil, err
		}
		if record.AudioEmbedding, err = s.loader.LoadAudioEmbedding(ctx, embPath); err != nil {
			return nil, services.Wrap(services.ErrSource, "dataset", "load audio embedding", name, err)
		}
		if strings.TrimSpace(entry.Audio) != "" {
			audioPath, err := s.requireAsset(base, name, "audio", entry.Audio)
			if err != nil {
				return nil, err
			}
			record.AudioPath = audioPath
		}
	case ModalityImage:
		// Reference image only; nothing further to load.
	default:
		return nil, services.Wrap(services.ErrSource, "dataset", "validate record",
			fmt.Sprintf("unknown modality %q", s.modality), nil)
	}

	return record, nil
}

func (s *ManifestSource) requireAsset(base, record, field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", services.Wrap(services.ErrSource, "dataset", "validate record",
			fmt.Sprintf("%s: %s is required for %s conditioning", record, field, s.modality), nil)
	}
	path := trimmed
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrSource, "dataset", "resolve asset",
			fmt.Sprintf("%s: %s", record, field), err)
	}
	return path, nil
}
