package ledger

import "time"

// RunStatus tracks the lifecycle of one generation run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RecordStatus tracks one conditioning record through the pipeline stages.
type RecordStatus string

const (
	RecordPending    RecordStatus = "pending"
	RecordPreparing  RecordStatus = "preparing"
	RecordGenerating RecordStatus = "generating"
	RecordEmitting   RecordStatus = "emitting"
	RecordCompleted  RecordStatus = "completed"
	RecordSkipped    RecordStatus = "skipped"
	RecordFailed     RecordStatus = "failed"
)

// Run is one ledger row describing a generation run.
type Run struct {
	ID         string
	Modality   string
	WorldSize  int
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Record is one ledger row describing a conditioning record's progress.
type Record struct {
	ID           int64
	RunID        string
	Name         string
	SaveName     string
	Status       RecordStatus
	ErrorMessage string
	ArtifactPath string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
