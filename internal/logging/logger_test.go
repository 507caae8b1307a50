package logging_test

import (
	"context"
	"path/filepath"
	"testing"

	"vetter/internal/config"
	"vetter/internal/logging"
	"vetter/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigCreatesLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("hello")
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithRecordKey(context.Background(), "0811")
	ctx = services.WithStage(ctx, "questions")
	ctx = services.WithRequestID(ctx, "req-1")

	fields := logging.ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 context fields, got %d", len(fields))
	}
	keys := map[string]bool{}
	for _, attr := range fields {
		keys[attr.Key] = true
	}
	for _, want := range []string{logging.FieldRecordKey, logging.FieldStage, logging.FieldCorrelationID} {
		if !keys[want] {
			t.Errorf("missing context field %q", want)
		}
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	logger.Info("does not panic")
}
