package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loom/internal/config"
	"loom/internal/dataset"
	"loom/internal/dist"
	"loom/internal/latent"
	"loom/internal/ledger"
	"loom/internal/logging"
	"loom/internal/request"
	"loom/internal/sampler"
	"loom/internal/services"
)

// Preparer converts a conditioning record into a latent bundle.
type Preparer interface {
	Prepare(ctx context.Context, record *dataset.Record) (*latent.Bundle, error)
}

// Emitter persists generated samples. Only the owner rank carries one.
type Emitter interface {
	Emit(ctx context.Context, result *sampler.Result, record *dataset.Record, savePath string) (string, error)
}

// Recorder persists per-record progress. The ledger store satisfies it; peer
// ranks run with the no-op recorder.
type Recorder interface {
	StartRecord(ctx context.Context, runID, name, saveName string) (int64, error)
	SetRecordStatus(ctx context.Context, id int64, status ledger.RecordStatus) error
	CompleteRecord(ctx context.Context, id int64, artifactPath string) error
	FailRecord(ctx context.Context, id int64, status ledger.RecordStatus, message string) error
}

type noopRecorder struct{}

func (noopRecorder) StartRecord(context.Context, string, string, string) (int64, error) {
	return 0, nil
}
func (noopRecorder) SetRecordStatus(context.Context, int64, ledger.RecordStatus) error { return nil }
func (noopRecorder) CompleteRecord(context.Context, int64, string) error               { return nil }
func (noopRecorder) FailRecord(context.Context, int64, ledger.RecordStatus, string) error {
	return nil
}

// Options wires one run's collaborators and policy.
type Options struct {
	Source   dataset.Source
	Preparer Preparer
	Sampler  sampler.Sampler
	// Emitter may be nil on peer ranks; it is only consulted on the owner.
	Emitter  Emitter
	Recorder Recorder

	Dist       dist.Context
	RunID      string
	Generation config.Generation
	SavePath   string

	// SkipCodecFailures advances past codec errors instead of aborting.
	SkipCodecFailures bool

	Logger *slog.Logger
}

// Summary reports what the run did with its partition.
type Summary struct {
	Total     int
	Completed int
	Skipped   int
}

// Driver runs the per-record generation loop for one replica. Records are
// processed strictly sequentially; every rank prepares and generates its full
// partition so collective calls inside the sampler stay aligned.
type Driver struct {
	source   dataset.Source
	preparer Preparer
	sampler  sampler.Sampler
	emitter  Emitter
	recorder Recorder

	dist      dist.Context
	runID     string
	params    config.Generation
	savePath  string
	skipCodec bool

	logger *slog.Logger
}

// New constructs a driver. A nil recorder or logger falls back to no-ops.
func New(opts Options) *Driver {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Driver{
		source:    opts.Source,
		preparer:  opts.Preparer,
		sampler:   opts.Sampler,
		emitter:   opts.Emitter,
		recorder:  recorder,
		dist:      opts.Dist,
		runID:     opts.RunID,
		params:    opts.Generation,
		savePath:  opts.SavePath,
		skipCodec: opts.SkipCodecFailures,
		logger:    logging.NewComponentLogger(logger, "driver"),
	}
}

// Run opens the dataset, takes this rank's partition, and drives each record
// through preparation, generation, and (on the owner) emission. A skippable
// failure marks the record and moves on; anything else aborts the run with
// the failed record already stamped in the ledger.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	ctx = services.WithRunID(ctx, d.runID)

	records, err := d.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	share, err := dataset.Partition(records, d.dist.WorldSize, d.dist.Rank)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "startup", "partition dataset", "", err)
	}

	d.logger.Info("run started",
		logging.String(logging.FieldRunID, d.runID),
		logging.Int(logging.FieldRank, d.dist.Rank),
		logging.Int("world_size", d.dist.WorldSize),
		logging.Int("dataset_records", len(records)),
		logging.Int("partition_records", len(share)),
	)

	summary := &Summary{Total: len(share)}
	for _, record := range share {
		skipped, err := d.process(services.WithRecord(ctx, record.Name), record)
		if err != nil {
			return summary, err
		}
		if skipped {
			summary.Skipped++
		} else {
			summary.Completed++
		}
	}

	d.logger.Info("run finished",
		logging.String(logging.FieldRunID, d.runID),
		logging.Int("completed", summary.Completed),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (d *Driver) process(ctx context.Context, record *dataset.Record) (skipped bool, err error) {
	logger := logging.WithContext(ctx, d.logger)

	ledgerID, err := d.recorder.StartRecord(ctx, d.runID, record.Name, record.SaveName)
	if err != nil {
		return false, fmt.Errorf("ledger: start record %s: %w", record.Name, err)
	}

	fail := func(stageErr error) (bool, error) {
		if services.Skippable(stageErr, d.skipCodec) {
			logger.Warn("record skipped", logging.Error(stageErr))
			if markErr := d.recorder.FailRecord(ctx, ledgerID, ledger.RecordSkipped, stageErr.Error()); markErr != nil {
				return false, fmt.Errorf("ledger: mark record skipped: %w", markErr)
			}
			return true, nil
		}
		if markErr := d.recorder.FailRecord(ctx, ledgerID, ledger.RecordFailed, stageErr.Error()); markErr != nil {
			logger.Error("ledger update failed", logging.Error(markErr))
		}
		return false, stageErr
	}

	logger.Debug("preparing latents", logging.String(logging.FieldStage, "preparing"))
	if err := d.recorder.SetRecordStatus(ctx, ledgerID, ledger.RecordPreparing); err != nil {
		return false, fmt.Errorf("ledger: set record status: %w", err)
	}
	bundle, err := d.preparer.Prepare(ctx, record)
	if err != nil {
		return fail(err)
	}

	req := request.Build(record, bundle, d.params)

	logger.Debug("generating samples",
		logging.String(logging.FieldStage, "generating"),
		logging.Int("width", req.Width),
		logging.Int("height", req.Height),
		logging.Int("frame_count", req.FrameCount),
	)
	if err := d.recorder.SetRecordStatus(ctx, ledgerID, ledger.RecordGenerating); err != nil {
		return false, fmt.Errorf("ledger: set record status: %w", err)
	}
	result, err := d.sampler.Generate(ctx, req)
	if err != nil {
		if !errors.Is(err, services.ErrSampler) {
			err = services.Wrap(services.ErrSampler, "generating", "generate samples", record.Name, err)
		}
		return fail(err)
	}

	artifact := ""
	if d.dist.IsOwner() && d.emitter != nil {
		logger.Debug("emitting artifacts", logging.String(logging.FieldStage, "emitting"))
		if err := d.recorder.SetRecordStatus(ctx, ledgerID, ledger.RecordEmitting); err != nil {
			return false, fmt.Errorf("ledger: set record status: %w", err)
		}
		if artifact, err = d.emitter.Emit(ctx, result, record, d.savePath); err != nil {
			return fail(err)
		}
	}

	if err := d.recorder.CompleteRecord(ctx, ledgerID, artifact); err != nil {
		return false, fmt.Errorf("ledger: complete record: %w", err)
	}
	logger.Info("record completed", logging.String("artifact", artifact))
	return false, nil
}
