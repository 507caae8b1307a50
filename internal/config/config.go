package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir        string `toml:"data_dir"`
	AttachmentsDir string `toml:"attachments_dir"`
	LogDir         string `toml:"log_dir"`
}

// Source contains configuration for the external row source the ingest stage
// pulls applicant submissions from.
type Source struct {
	Endpoint       string `toml:"endpoint"`
	Token          string `toml:"token"`
	PhoneField     string `toml:"phone_field"`
	TimestampField string `toml:"timestamp_field"`
	PositionField  string `toml:"position_field"`
	RequestTimeout int    `toml:"request_timeout"`
}

// LLM contains connection settings for the language-model collaborator.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Workflow contains daemon timing configuration.
type Workflow struct {
	PollInterval       int `toml:"poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// FieldMapping declares how a raw source field is treated during ingestion.
// Attachment-typed fields are resolved and, when ExtractText is set, have
// their text content extracted.
type FieldMapping struct {
	Name        string `toml:"name"`
	Type        string `toml:"type"`
	Format      string `toml:"format"`
	ExtractText bool   `toml:"extract_text"`
}

// IsAttachment reports whether the mapping declares an attachment field.
func (m FieldMapping) IsAttachment() bool {
	return strings.EqualFold(strings.TrimSpace(m.Type), "attachment")
}

// MIMEType returns the expected MIME type for the declared format.
func (m FieldMapping) MIMEType() string {
	format := strings.ToLower(strings.TrimSpace(m.Format))
	if format == "" {
		format = "pdf"
	}
	return "application/" + format
}

// Config encapsulates all configuration values for vetter.
//
// Sections by subsystem:
//   - Paths: data, attachment, and log directories
//   - Source: external applicant row source
//   - LLM: language-model connection settings
//   - Workflow: daemon poll timing
//   - Logging: log format and level
//   - Fields: per-field ingestion policies
type Config struct {
	Paths    Paths          `toml:"paths"`
	Source   Source         `toml:"source"`
	LLM      LLM            `toml:"llm"`
	Workflow Workflow       `toml:"workflow"`
	Logging  Logging        `toml:"logging"`
	Fields   []FieldMapping `toml:"fields"`
}

// DefaultConfigPath returns the absolute path to the default configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vetter/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized, and the LLM API key
// overlaid from the environment (a .env file is honored when present).
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.overlayEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// overlayEnv pulls secrets from the environment so they never have to live in
// the config file. Missing .env files are not an error.
func (c *Config) overlayEnv() {
	_ = godotenv.Load()
	if key := strings.TrimSpace(os.Getenv("VETTER_LLM_API_KEY")); key != "" {
		c.LLM.APIKey = key
	} else if key := strings.TrimSpace(os.Getenv("API_KEY")); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
	if token := strings.TrimSpace(os.Getenv("VETTER_SOURCE_TOKEN")); token != "" {
		c.Source.Token = token
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("vetter.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the configured directories when absent.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.AttachmentsDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// AttachmentMappings returns the field mappings declared as attachments.
func (c *Config) AttachmentMappings() []FieldMapping {
	mappings := make([]FieldMapping, 0, len(c.Fields))
	for _, mapping := range c.Fields {
		if mapping.IsAttachment() {
			mappings = append(mappings, mapping)
		}
	}
	return mappings
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample configuration to the given path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
