package driver

import (
	"context"
	"errors"
	"testing"

	"loom/internal/config"
	"loom/internal/dataset"
	"loom/internal/dist"
	"loom/internal/latent"
	"loom/internal/ledger"
	"loom/internal/request"
	"loom/internal/sampler"
	"loom/internal/services"
	"loom/internal/tensor"
)

type fakeSource struct {
	records []*dataset.Record
	err     error
}

func (s *fakeSource) Open(context.Context) ([]*dataset.Record, error) {
	return s.records, s.err
}

type fakePreparer struct {
	failures map[string]error
	calls    []string
}

func (p *fakePreparer) Prepare(_ context.Context, record *dataset.Record) (*latent.Bundle, error) {
	p.calls = append(p.calls, record.Name)
	if err, ok := p.failures[record.Name]; ok {
		return nil, err
	}
	return &latent.Bundle{
		RefLatents:       tensor.Ones(1, 4, 1, 2, 2),
		UncondRefLatents: tensor.Ones(1, 4, 1, 2, 2),
	}, nil
}

type fakeSampler struct {
	failures map[string]error
	calls    []string
}

func (s *fakeSampler) Generate(_ context.Context, req *request.GenerationRequest) (*sampler.Result, error) {
	s.calls = append(s.calls, req.Name)
	if err, ok := s.failures[req.Name]; ok {
		return nil, err
	}
	return &sampler.Result{Samples: []*tensor.Tensor{tensor.Ones(3, 1, 2, 2)}}, nil
}

type fakeEmitter struct {
	calls []string
	err   error
}

func (e *fakeEmitter) Emit(_ context.Context, _ *sampler.Result, record *dataset.Record, savePath string) (string, error) {
	e.calls = append(e.calls, record.Name)
	if e.err != nil {
		return "", e.err
	}
	return savePath + "/" + record.SaveName + ".mp4", nil
}

type recordedStatus struct {
	name    string
	status  ledger.RecordStatus
	message string
}

type memRecorder struct {
	nextID   int64
	names    map[int64]string
	statuses []recordedStatus
}

func newMemRecorder() *memRecorder {
	return &memRecorder{names: make(map[int64]string)}
}

func (r *memRecorder) StartRecord(_ context.Context, _, name, _ string) (int64, error) {
	r.nextID++
	r.names[r.nextID] = name
	r.statuses = append(r.statuses, recordedStatus{name: name, status: ledger.RecordPending})
	return r.nextID, nil
}

func (r *memRecorder) SetRecordStatus(_ context.Context, id int64, status ledger.RecordStatus) error {
	r.statuses = append(r.statuses, recordedStatus{name: r.names[id], status: status})
	return nil
}

func (r *memRecorder) CompleteRecord(_ context.Context, id int64, _ string) error {
	r.statuses = append(r.statuses, recordedStatus{name: r.names[id], status: ledger.RecordCompleted})
	return nil
}

func (r *memRecorder) FailRecord(_ context.Context, id int64, status ledger.RecordStatus, message string) error {
	r.statuses = append(r.statuses, recordedStatus{name: r.names[id], status: status, message: message})
	return nil
}

func (r *memRecorder) lastStatus(name string) ledger.RecordStatus {
	var last ledger.RecordStatus
	for _, s := range r.statuses {
		if s.name == name {
			last = s.status
		}
	}
	return last
}

func namedRecords(names ...string) []*dataset.Record {
	records := make([]*dataset.Record, 0, len(names))
	for _, name := range names {
		records = append(records, &dataset.Record{
			Name:      name,
			SaveName:  name,
			RefPixels: tensor.Ones(1, 3, 2, 2),
		})
	}
	return records
}

func newTestDriver(opts Options) *Driver {
	if opts.Dist.WorldSize == 0 {
		opts.Dist = dist.Context{Rank: 0, WorldSize: 1}
	}
	opts.Generation = config.Default().Generation
	opts.SavePath = "/tmp/out"
	opts.RunID = "run-1"
	return New(opts)
}

func TestRunCompletesAllRecords(t *testing.T) {
	preparer := &fakePreparer{}
	gen := &fakeSampler{}
	emitter := &fakeEmitter{}
	recorder := newMemRecorder()

	d := newTestDriver(Options{
		Source:   &fakeSource{records: namedRecords("a", "b", "c")},
		Preparer: preparer,
		Sampler:  gen,
		Emitter:  emitter,
		Recorder: recorder,
	})

	summary, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Total != 3 || summary.Completed != 3 || summary.Skipped != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(gen.calls) != 3 || len(emitter.calls) != 3 {
		t.Fatalf("expected 3 generate and emit calls, got %d/%d", len(gen.calls), len(emitter.calls))
	}
	for _, name := range []string{"a", "b", "c"} {
		if got := recorder.lastStatus(name); got != ledger.RecordCompleted {
			t.Fatalf("record %s ended %q, want completed", name, got)
		}
	}
}

func TestPeerRankGeneratesWithoutEmitting(t *testing.T) {
	preparer := &fakePreparer{}
	gen := &fakeSampler{}

	d := newTestDriver(Options{
		Source:   &fakeSource{records: namedRecords("a", "b", "c", "d")},
		Preparer: preparer,
		Sampler:  gen,
		Dist:     dist.Context{Rank: 1, WorldSize: 2},
	})

	summary, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Total != 2 || summary.Completed != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	want := []string{"b", "d"}
	if len(gen.calls) != len(want) {
		t.Fatalf("expected generate calls %v, got %v", want, gen.calls)
	}
	for i, name := range want {
		if gen.calls[i] != name {
			t.Fatalf("expected generate calls %v, got %v", want, gen.calls)
		}
	}
	if len(preparer.calls) != 2 {
		t.Fatalf("peer rank must still prepare its partition, got %v", preparer.calls)
	}
}

func TestCodecFailureSkipsWhenPolicyAllows(t *testing.T) {
	codecErr := services.Wrap(services.ErrCodec, "preparing", "encode background", "b", nil)
	preparer := &fakePreparer{failures: map[string]error{"b": codecErr}}
	gen := &fakeSampler{}
	recorder := newMemRecorder()

	d := newTestDriver(Options{
		Source:            &fakeSource{records: namedRecords("a", "b", "c")},
		Preparer:          preparer,
		Sampler:           gen,
		Emitter:           &fakeEmitter{},
		Recorder:          recorder,
		SkipCodecFailures: true,
	})

	summary, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Completed != 2 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	for _, name := range gen.calls {
		if name == "b" {
			t.Fatal("skipped record must not reach the sampler")
		}
	}
	if got := recorder.lastStatus("b"); got != ledger.RecordSkipped {
		t.Fatalf("record b ended %q, want skipped", got)
	}
	if got := recorder.lastStatus("c"); got != ledger.RecordCompleted {
		t.Fatalf("record c ended %q, want completed", got)
	}
}

func TestCodecFailureAbortsByDefault(t *testing.T) {
	codecErr := services.Wrap(services.ErrCodec, "preparing", "encode background", "b", nil)
	preparer := &fakePreparer{failures: map[string]error{"b": codecErr}}
	gen := &fakeSampler{}
	recorder := newMemRecorder()

	d := newTestDriver(Options{
		Source:   &fakeSource{records: namedRecords("a", "b", "c")},
		Preparer: preparer,
		Sampler:  gen,
		Emitter:  &fakeEmitter{},
		Recorder: recorder,
	})

	_, err := d.Run(context.Background())
	if !errors.Is(err, services.ErrCodec) {
		t.Fatalf("expected codec abort, got %v", err)
	}
	if len(preparer.calls) != 2 {
		t.Fatalf("records after the abort must not run, got %v", preparer.calls)
	}
	if got := recorder.lastStatus("b"); got != ledger.RecordFailed {
		t.Fatalf("record b ended %q, want failed", got)
	}
}

func TestSamplerFailureAbortsRun(t *testing.T) {
	gen := &fakeSampler{failures: map[string]error{"a": errors.New("device lost")}}
	recorder := newMemRecorder()

	d := newTestDriver(Options{
		Source:   &fakeSource{records: namedRecords("a", "b")},
		Preparer: &fakePreparer{},
		Sampler:  gen,
		Emitter:  &fakeEmitter{},
		Recorder: recorder,
	})

	_, err := d.Run(context.Background())
	if !errors.Is(err, services.ErrSampler) {
		t.Fatalf("expected sampler abort, got %v", err)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("run must stop at the failed record, got %v", gen.calls)
	}
	if got := recorder.lastStatus("a"); got != ledger.RecordFailed {
		t.Fatalf("record a ended %q, want failed", got)
	}
}

func TestEmitFailureAbortsRun(t *testing.T) {
	emitErr := services.Wrap(services.ErrEmit, "emitting", "write video", "a", nil)
	recorder := newMemRecorder()

	d := newTestDriver(Options{
		Source:   &fakeSource{records: namedRecords("a")},
		Preparer: &fakePreparer{},
		Sampler:  &fakeSampler{},
		Emitter:  &fakeEmitter{err: emitErr},
		Recorder: recorder,
	})

	_, err := d.Run(context.Background())
	if !errors.Is(err, services.ErrEmit) {
		t.Fatalf("expected emit abort, got %v", err)
	}
	if got := recorder.lastStatus("a"); got != ledger.RecordFailed {
		t.Fatalf("record a ended %q, want failed", got)
	}
}

func TestManifestFailureIsFatal(t *testing.T) {
	sourceErr := services.Wrap(services.ErrSource, "dataset", "parse manifest", "bad json", nil)

	d := newTestDriver(Options{
		Source:   &fakeSource{err: sourceErr},
		Preparer: &fakePreparer{},
		Sampler:  &fakeSampler{},
	})

	_, err := d.Run(context.Background())
	if !errors.Is(err, services.ErrSource) {
		t.Fatalf("expected source failure, got %v", err)
	}
}
