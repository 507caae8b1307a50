package config

const (
	defaultDataDir        = "~/.local/share/vetter"
	defaultAttachmentsDir = "~/.local/share/vetter/attachments"
	defaultLogDir         = "~/.local/share/vetter/logs"

	defaultPhoneField     = "Phone Number"
	defaultTimestampField = "Timestamp"
	defaultPositionField  = "desired_position"
	defaultSourceTimeout  = 30

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-2.0-flash-exp:free"
	defaultLLMTimeoutSeconds = 60

	defaultPollInterval       = 180
	defaultErrorRetryInterval = 15

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:        defaultDataDir,
			AttachmentsDir: defaultAttachmentsDir,
			LogDir:         defaultLogDir,
		},
		Source: Source{
			PhoneField:     defaultPhoneField,
			TimestampField: defaultTimestampField,
			PositionField:  defaultPositionField,
			RequestTimeout: defaultSourceTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Workflow: Workflow{
			PollInterval:       defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Fields: []FieldMapping{
			{Name: "Resume/CV", Type: "attachment", Format: "pdf", ExtractText: true},
		},
	}
}
