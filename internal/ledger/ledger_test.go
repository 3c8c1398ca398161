package ledger_test

import (
	"context"
	"testing"

	"loom/internal/ledger"
	"loom/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.BeginRun(ctx, "run-1", "audio", 2); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	id, err := store.StartRecord(ctx, "run-1", "talk-01", "talk-01")
	if err != nil {
		t.Fatalf("StartRecord failed: %v", err)
	}
	if err := store.SetRecordStatus(ctx, id, ledger.RecordGenerating); err != nil {
		t.Fatalf("SetRecordStatus failed: %v", err)
	}
	if err := store.CompleteRecord(ctx, id, "/out/talk-01_audio.mp4"); err != nil {
		t.Fatalf("CompleteRecord failed: %v", err)
	}

	skippedID, err := store.StartRecord(ctx, "run-1", "talk-02", "talk-02")
	if err != nil {
		t.Fatalf("StartRecord failed: %v", err)
	}
	if err := store.FailRecord(ctx, skippedID, ledger.RecordSkipped, "asset missing"); err != nil {
		t.Fatalf("FailRecord failed: %v", err)
	}

	if err := store.FinishRun(ctx, "run-1", ledger.RunCompleted); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != ledger.RunCompleted || runs[0].FinishedAt == nil {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	records, err := store.ListRecords(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Status != ledger.RecordCompleted || records[0].ArtifactPath != "/out/talk-01_audio.mp4" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Status != ledger.RecordSkipped || records[1].ErrorMessage != "asset missing" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestFailRecordRejectsNonTerminalStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.BeginRun(ctx, "run-1", "image", 1); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	id, err := store.StartRecord(ctx, "run-1", "a", "a")
	if err != nil {
		t.Fatalf("StartRecord failed: %v", err)
	}
	if err := store.FailRecord(ctx, id, ledger.RecordGenerating, "nope"); err == nil {
		t.Fatal("expected invalid failure status error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	again, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	_ = again.Close()
}
