package emit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"loom/internal/dataset"
	"loom/internal/logging"
	"loom/internal/sampler"
	"loom/internal/services"
)

// Emitter writes generated samples to disk. It is only ever invoked on the
// owner rank; peer ranks run generation without an emitter.
type Emitter struct {
	client Client
	fps    int
	logger *slog.Logger
}

// NewEmitter constructs an emitter over the given encoding client.
func NewEmitter(client Client, fps int, logger *slog.Logger) *Emitter {
	return &Emitter{client: client, fps: fps, logger: logging.NewComponentLogger(logger, "emitter")}
}

// Emit writes each sample of the result as <savePath>/<save_name>.mp4. When
// the record carries a resolvable audio asset, the audio track is muxed into
// <save_name>_audio.mp4 and the silent intermediate is removed; if the mux
// fails, the silent video is preserved. Returns the last artifact path.
func (e *Emitter) Emit(ctx context.Context, result *sampler.Result, record *dataset.Record, savePath string) (string, error) {
	if err := os.MkdirAll(savePath, 0o755); err != nil {
		return "", services.Wrap(services.ErrEmit, "emitting", "create save path", savePath, err)
	}

	var artifact string
	for i, sample := range result.Samples {
		silentPath := filepath.Join(savePath, record.SaveName+".mp4")
		if err := e.client.WriteVideo(ctx, silentPath, sample, e.fps); err != nil {
			return "", services.Wrap(services.ErrEmit, "emitting", "write video",
				fmt.Sprintf("%s sample %d", record.Name, i), err)
		}

		if record.HasAudio() && record.AudioPath != "" {
			muxedPath := filepath.Join(savePath, record.SaveName+"_audio.mp4")
			if err := e.client.MuxAudio(ctx, silentPath, record.AudioPath, muxedPath); err != nil {
				// Keep the silent intermediate so the sample is not lost.
				return "", services.Wrap(services.ErrEmit, "emitting", "mux audio", record.Name, err)
			}
			if err := os.Remove(silentPath); err != nil {
				return "", services.Wrap(services.ErrEmit, "emitting", "remove silent intermediate", record.Name, err)
			}
			artifact = muxedPath
		} else {
			artifact = silentPath
		}

		e.logger.Info("sample saved",
			logging.String(logging.FieldRecord, record.Name),
			logging.String("path", artifact),
		)
	}
	return artifact, nil
}
