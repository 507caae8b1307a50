package testsupport

import (
	"path/filepath"
	"testing"

	"vetter/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.AttachmentsDir = filepath.Join(base, "attachments")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Workflow.PollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1
	cfg.LLM.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSourceEndpoint points the row source at the given URL.
func WithSourceEndpoint(endpoint string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Source.Endpoint = endpoint
	}
}

// WithFields replaces the field mappings on the test config.
func WithFields(fields ...config.FieldMapping) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Fields = fields
	}
}
