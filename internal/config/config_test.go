package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vetter/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.AttachmentMappings()) != 1 {
		t.Fatalf("expected one default attachment mapping, got %d", len(cfg.AttachmentMappings()))
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if cfg.Workflow.PollInterval != 180 {
		t.Fatalf("expected default poll interval, got %d", cfg.Workflow.PollInterval)
	}
	if cfg.Source.PhoneField != "Phone Number" {
		t.Fatalf("unexpected default phone field: %q", cfg.Source.PhoneField)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"

[workflow]
poll_interval = 5

[logging]
format = "JSON"

[[fields]]
name = "Resume/CV"
type = "attachment"
format = "pdf"
extract_text = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Workflow.PollInterval != 5 {
		t.Fatalf("expected poll interval 5, got %d", cfg.Workflow.PollInterval)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
	if cfg.Paths.AttachmentsDir == "" {
		t.Fatal("expected attachments dir default to survive normalization")
	}
}

func TestLoadRejectsBadFieldType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[[fields]]
name = "Resume/CV"
type = "video"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unsupported field type")
	} else if !strings.Contains(err.Error(), "fields[0].type") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLLMKeyFromEnvironment(t *testing.T) {
	t.Setenv("VETTER_LLM_API_KEY", "env-key")
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("expected API key from environment, got %q", cfg.LLM.APIKey)
	}
}

func TestFieldMappingMIMEType(t *testing.T) {
	mapping := config.FieldMapping{Name: "Resume/CV", Type: "attachment", Format: "pdf"}
	if got := mapping.MIMEType(); got != "application/pdf" {
		t.Fatalf("MIMEType = %q", got)
	}
	if !mapping.IsAttachment() {
		t.Fatal("expected attachment mapping")
	}
}
