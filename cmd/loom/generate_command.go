package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"loom/internal/backend"
	"loom/internal/config"
	"loom/internal/dataset"
	"loom/internal/dist"
	"loom/internal/driver"
	"loom/internal/emit"
	"loom/internal/latent"
	"loom/internal/ledger"
	"loom/internal/logging"
	"loom/internal/preflight"
	"loom/internal/services"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var suffix string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run batched video generation over the conditioning dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if suffix != "" {
				cfg.Paths.SavePathSuffix = suffix
			}
			return runGenerate(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&suffix, "save-path-suffix", "",
		"Suffix appended to the save path with an underscore")
	return cmd
}

func runGenerate(cmd *cobra.Command, cfg *config.Config) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := newRunLogger(cfg)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "startup", "build logger", "", err)
	}

	dctx := dist.Resolve()
	logger = logger.With(logging.Int(logging.FieldRank, dctx.Rank))

	if err := cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "startup", "ensure directories", "", err)
	}
	if err := preflight.Err(preflight.RunAll(signalCtx, cfg)); err != nil {
		return err
	}

	b, err := backend.Open(cfg, dctx, logger)
	if err != nil {
		return err
	}

	modality, ok := dataset.ParseModality(cfg.Dataset.Modality)
	if !ok {
		return services.Wrap(services.ErrConfiguration, "startup", "parse modality", cfg.Dataset.Modality, nil)
	}

	runID := uuid.NewString()
	savePath := cfg.EffectiveSavePath()

	var (
		store    *ledger.Store
		recorder driver.Recorder
		emitter  driver.Emitter
	)
	if dctx.IsOwner() {
		lock := flock.New(filepath.Join(savePath, "loom.lock"))
		locked, err := lock.TryLock()
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "startup", "acquire run lock", lock.Path(), err)
		}
		if !locked {
			return services.Wrap(services.ErrConfiguration, "startup", "acquire run lock",
				"another run is already writing to "+savePath, nil)
		}
		defer func() { _ = lock.Unlock() }()

		if store, err = ledger.Open(cfg); err != nil {
			return services.Wrap(services.ErrConfiguration, "startup", "open run ledger", "", err)
		}
		defer func() { _ = store.Close() }()
		if err := store.BeginRun(signalCtx, runID, cfg.Dataset.Modality, dctx.WorldSize); err != nil {
			return services.Wrap(services.ErrConfiguration, "startup", "record run start", "", err)
		}
		recorder = store
		emitter = emit.NewEmitter(
			emit.NewFFmpeg(emit.WithBinary(cfg.Pipeline.FFmpegBinary)),
			cfg.Generation.FPS,
			logger,
		)
	}

	d := driver.New(driver.Options{
		Source:            dataset.NewManifestSource(cfg.Dataset.Manifest, modality, b.Loader, cfg.Generation.Seed),
		Preparer:          latent.NewPreparer(b.Codec, logger),
		Sampler:           b.Sampler,
		Emitter:           emitter,
		Recorder:          recorder,
		Dist:              dctx,
		RunID:             runID,
		Generation:        cfg.Generation,
		SavePath:          savePath,
		SkipCodecFailures: cfg.SkipOnCodecError(),
		Logger:            logger,
	})

	summary, runErr := d.Run(signalCtx)
	if store != nil {
		status := ledger.RunCompleted
		if runErr != nil {
			status = ledger.RunFailed
		}
		// The run row is stamped even when the context was cancelled.
		if err := store.FinishRun(context.Background(), runID, status); err != nil {
			logger.Warn("failed to record run finish", logging.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s finished: %d completed, %d skipped (of %d)\n",
		runID, summary.Completed, summary.Skipped, summary.Total)
	return nil
}

// newRunLogger writes to stderr and, when a log directory is configured, a
// per-process log file alongside the ledger.
func newRunLogger(cfg *config.Config) (*slog.Logger, error) {
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "loom.log"))
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}
