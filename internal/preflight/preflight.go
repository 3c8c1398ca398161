package preflight

import (
	"context"
	"fmt"
	"strings"

	"loom/internal/config"
	"loom/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all preflight checks for the given config. Every check runs
// even after a failure so the operator sees the full picture at once.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckCheckpoint(cfg.Paths.Checkpoint),
		CheckManifest(cfg.Dataset.Manifest),
		CheckDirectoryAccess("Save path", cfg.EffectiveSavePath()),
		CheckFreeSpace("Save path free space", cfg.EffectiveSavePath()),
		CheckFFmpeg(cfg.Pipeline.FFmpegBinary),
	}
	return results
}

// Err folds failed results into a single configuration error, or nil when
// everything passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "startup", "preflight",
		strings.Join(failed, "; "), nil)
}
