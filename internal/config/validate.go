package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.AttachmentsDir) == "" {
		problems = append(problems, "paths.attachments_dir must be set")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.Format))
	}

	for i, mapping := range c.Fields {
		if strings.TrimSpace(mapping.Name) == "" {
			problems = append(problems, fmt.Sprintf("fields[%d].name must be set", i))
		}
		switch strings.ToLower(strings.TrimSpace(mapping.Type)) {
		case "attachment", "text":
		default:
			problems = append(problems, fmt.Sprintf("fields[%d].type %q is not supported (attachment, text)", i, mapping.Type))
		}
		if mapping.IsAttachment() && strings.TrimSpace(mapping.Format) == "" {
			problems = append(problems, fmt.Sprintf("fields[%d].format must be set for attachments", i))
		}
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
