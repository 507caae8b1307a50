package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"vetter/internal/config"
	"vetter/internal/enrich"
	"vetter/internal/evaluate"
	"vetter/internal/ingest"
	"vetter/internal/logging"
	"vetter/internal/questions"
	"vetter/internal/records"
	"vetter/internal/services/llm"
	"vetter/internal/services/sheets"
	"vetter/internal/testsupport"
)

type fakeSource struct {
	rows []sheets.Row
	err  error
}

func (f *fakeSource) FetchAll(context.Context) ([]sheets.Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeStorage struct{}

func (fakeStorage) ResolveReference(string) (string, error) { return "file-1", nil }

func (fakeStorage) FetchBinary(context.Context, string, string) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func (fakeStorage) ExtractText([]byte) (string, error) { return "ten years of plumbing", nil }

type scriptedCompleter struct {
	responses []string
	calls     int
}

func (s *scriptedCompleter) Complete(context.Context, []llm.Message) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("unexpected call")
	}
	response := s.responses[s.calls]
	s.calls++
	return response, nil
}

func newManager(t *testing.T, source sheets.Fetcher, completer llm.Completer) (*Manager, *records.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithFields(
		config.FieldMapping{Name: "Resume/CV", Type: "attachment", Format: "pdf", ExtractText: true},
	))
	store := testsupport.MustOpenStore(t, cfg)
	resolver := enrich.NewResolver(cfg, fakeStorage{}, logging.NewNop())
	ingestor := ingest.New(cfg, store, source, resolver, logging.NewNop())
	generator := questions.NewGenerator(cfg, store, completer, logging.NewNop())
	evaluator := evaluate.NewEvaluator(store, completer, logging.NewNop())
	return NewManager(cfg, ingestor, generator, evaluator, logging.NewNop()), store
}

func TestTickAdvancesRecordsThroughStages(t *testing.T) {
	source := &fakeSource{rows: []sheets.Row{{
		"Phone Number": "0811",
		"Timestamp":    "2024-01-01 10:00:00",
		"Resume/CV":    "https://drive.google.com/file/d/file-1/view",
	}}}
	completer := &scriptedCompleter{responses: []string{
		"Commentary on the resume.",
		"[1. Why plumbing?]\n[2. Hardest install?]",
		"Judgement one.",
		"[Score: 80]",
		"Judgement two.",
		"[Score: 60]",
	}}
	manager, store := newManager(t, source, completer)
	ctx := context.Background()

	if err := manager.tick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	record, err := store.GetByKey(ctx, "0811")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if len(record.Questions) != 2 {
		t.Fatalf("questions = %v", record.Questions)
	}
	if record.HasEvaluation() {
		t.Fatal("record evaluated before answers arrived")
	}

	// Answers arrive out of band between ticks.
	record.Answers = []string{"I like pipes.", "A three-story retrofit."}
	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := manager.tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	record, err = store.GetByKey(ctx, "0811")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if !record.HasEvaluation() {
		t.Fatal("record not evaluated")
	}
	if record.Evaluation.Score != 70 {
		t.Fatalf("score = %v", record.Evaluation.Score)
	}
}

func TestTickSurfacesSourceFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("source returned 502")}
	manager, _ := newManager(t, source, &scriptedCompleter{})

	if err := manager.tick(context.Background()); err == nil {
		t.Fatal("expected source failure to surface")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	source := &fakeSource{rows: []sheets.Row{{
		"Phone Number": "0811",
		"Timestamp":    "2024-01-01 10:00:00",
	}}}
	manager, store := newManager(t, source, &scriptedCompleter{})
	ctx := context.Background()

	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := manager.Start(ctx); err == nil {
		t.Fatal("second Start should fail while running")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		stats, err := store.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if stats.Total == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("poll loop never ingested the row")
		}
		time.Sleep(20 * time.Millisecond)
	}

	manager.Stop()
	if manager.Running() {
		t.Fatal("manager still running after Stop")
	}
	manager.Stop()

	if err := manager.Start(ctx); err != nil {
		t.Fatalf("restart after Stop: %v", err)
	}
	manager.Stop()
}
