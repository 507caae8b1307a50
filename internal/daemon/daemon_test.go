package daemon

import (
	"context"
	"errors"
	"testing"

	"vetter/internal/config"
	"vetter/internal/enrich"
	"vetter/internal/evaluate"
	"vetter/internal/ingest"
	"vetter/internal/logging"
	"vetter/internal/pipeline"
	"vetter/internal/questions"
	"vetter/internal/records"
	"vetter/internal/services/llm"
	"vetter/internal/services/sheets"
	"vetter/internal/testsupport"
)

type emptySource struct{}

func (emptySource) FetchAll(context.Context) ([]sheets.Row, error) { return nil, nil }

type noStorage struct{}

func (noStorage) ResolveReference(string) (string, error) { return "", errors.New("unused") }

func (noStorage) FetchBinary(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("unused")
}

func (noStorage) ExtractText([]byte) (string, error) { return "", errors.New("unused") }

type noCompleter struct{}

func (noCompleter) Complete(context.Context, []llm.Message) (string, error) {
	return "", errors.New("unused")
}

func newDaemon(t *testing.T, cfg *config.Config, store *records.Store) *Daemon {
	t.Helper()
	resolver := enrich.NewResolver(cfg, noStorage{}, logging.NewNop())
	ingestor := ingest.New(cfg, store, emptySource{}, resolver, logging.NewNop())
	generator := questions.NewGenerator(cfg, store, noCompleter{}, logging.NewNop())
	evaluator := evaluate.NewEvaluator(store, noCompleter{}, logging.NewNop())
	manager := pipeline.NewManager(cfg, ingestor, generator, evaluator, logging.NewNop())

	daemon, err := New(cfg, store, manager, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return daemon
}

func TestStartStopReleasesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	daemon := newDaemon(t, cfg, store)

	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if status := daemon.Status(); !status.Running {
		t.Fatal("daemon should report running")
	}
	if err := daemon.Start(context.Background()); err == nil {
		t.Fatal("second Start on a running daemon should fail")
	}

	daemon.Stop()
	if status := daemon.Status(); status.Running {
		t.Fatal("daemon should report stopped")
	}

	// The lock must be reacquirable once released.
	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	daemon.Stop()
}

func TestSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	first := newDaemon(t, cfg, store)
	second := newDaemon(t, cfg, store)

	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance should be rejected while the lock is held")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := New(cfg, nil, nil, logging.NewNop()); err == nil {
		t.Fatal("expected constructor error")
	}
}
