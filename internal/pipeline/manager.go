// Package pipeline drives the record lifecycle. A single background goroutine
// ticks on the configured poll interval, running ingest, question generation,
// and evaluation in order against the shared store.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vetter/internal/config"
	"vetter/internal/evaluate"
	"vetter/internal/ingest"
	"vetter/internal/logging"
	"vetter/internal/questions"
	"vetter/internal/services"
)

// Manager owns the poll loop and the stage handlers it dispatches to.
type Manager struct {
	ingestor  *ingest.Ingestor
	generator *questions.Generator
	evaluator *evaluate.Evaluator
	logger    *slog.Logger

	pollInterval time.Duration
	errorRetry   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a pipeline manager over the three stage handlers.
func NewManager(cfg *config.Config, ingestor *ingest.Ingestor, generator *questions.Generator, evaluator *evaluate.Evaluator, logger *slog.Logger) *Manager {
	return &Manager{
		ingestor:     ingestor,
		generator:    generator,
		evaluator:    evaluator,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
		pollInterval: time.Duration(cfg.Workflow.PollInterval) * time.Second,
		errorRetry:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
}

// Start begins background processing. Starting a running manager is an error.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("pipeline already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the loop to exit. A
// tick already in flight runs to completion before the loop observes the
// cancellation.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the poll loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// LastError returns the most recent tick failure, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := m.tick(ctx)
		m.setLastError(err)

		wait := m.pollInterval
		if err != nil {
			m.logger.Error("tick failed", logging.Error(err))
			wait = m.errorRetry
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// tick runs one full pass of the three stages. Stage work runs on a
// non-cancellable context so shutdown never abandons a half-processed record;
// the loop exits at the next iteration instead.
func (m *Manager) tick(ctx context.Context) error {
	tickCtx := services.WithRequestID(context.WithoutCancel(ctx), uuid.NewString())
	logger := logging.WithContext(tickCtx, m.logger)

	summary, err := m.ingestor.Run(services.WithStage(tickCtx, "ingest"))
	if err != nil {
		return err
	}

	questioned, err := m.generator.Run(services.WithStage(tickCtx, "questions"))
	if err != nil {
		return err
	}

	evaluated, err := m.evaluator.Run(services.WithStage(tickCtx, "evaluate"))
	if err != nil {
		return err
	}

	logger.Info("tick complete",
		logging.Int("ingested", summary.Processed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("questioned", questioned),
		logging.Int("evaluated", evaluated),
	)
	return nil
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
