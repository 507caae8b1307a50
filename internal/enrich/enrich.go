// Package enrich resolves attachment-typed fields into stored local copies
// and extracted text. Failures are captured on the attachment rather than
// surfaced, so a bad link never blocks the rest of a batch.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"vetter/internal/config"
	"vetter/internal/logging"
	"vetter/internal/records"
	"vetter/internal/services/drive"
	"vetter/internal/textutil"
)

// Resolver turns attachment references into local copies plus extracted text.
type Resolver struct {
	storage        drive.Service
	attachmentsDir string
	logger         *slog.Logger
}

// NewResolver constructs a resolver writing local copies under the configured
// attachments directory.
func NewResolver(cfg *config.Config, storage drive.Service, logger *slog.Logger) *Resolver {
	return &Resolver{
		storage:        storage,
		attachmentsDir: cfg.Paths.AttachmentsDir,
		logger:         logging.NewComponentLogger(logger, "enrich"),
	}
}

// Enrich resolves the first populated attachment field declared by the
// mappings and sets the result on the record. Records without an attachment
// reference are left untouched.
func (r *Resolver) Enrich(ctx context.Context, record *records.Record, mappings []config.FieldMapping) {
	for _, mapping := range mappings {
		if !mapping.IsAttachment() {
			continue
		}
		reference := strings.TrimSpace(record.Field(textutil.NormalizeFieldName(mapping.Name)))
		if reference == "" {
			continue
		}
		record.Attachment = r.Resolve(ctx, reference, mapping)
		return
	}
}

// Resolve downloads one attachment reference, saves a local copy, and
// extracts its text when the mapping asks for it. Every failure is captured
// in the returned attachment's Error field; Resolve never returns nil.
func (r *Resolver) Resolve(ctx context.Context, reference string, mapping config.FieldMapping) *records.Attachment {
	attachment := &records.Attachment{SourceReference: reference}

	id, err := r.storage.ResolveReference(reference)
	if err != nil {
		r.fail(attachment, "resolve reference", err)
		return attachment
	}

	data, err := r.storage.FetchBinary(ctx, id, mapping.MIMEType())
	if err != nil {
		r.fail(attachment, "fetch binary", err)
		return attachment
	}

	localPath, err := r.saveLocal(data, mapping)
	if err != nil {
		// The bytes are already in hand, so extraction still proceeds.
		r.fail(attachment, "save local copy", err)
	} else {
		attachment.LocalReference = localPath
	}

	if mapping.ExtractText {
		text, err := r.storage.ExtractText(data)
		if err != nil {
			r.fail(attachment, "extract text", err)
			return attachment
		}
		attachment.ExtractedText = text
	}
	return attachment
}

func (r *Resolver) saveLocal(data []byte, mapping config.FieldMapping) (string, error) {
	if strings.TrimSpace(r.attachmentsDir) == "" {
		return "", fmt.Errorf("attachments directory not configured")
	}
	if err := os.MkdirAll(r.attachmentsDir, 0o755); err != nil {
		return "", fmt.Errorf("create attachments directory: %w", err)
	}
	format := strings.ToLower(strings.TrimSpace(mapping.Format))
	if format == "" {
		format = "pdf"
	}
	path := filepath.Join(r.attachmentsDir, uuid.NewString()+"."+format)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return path, nil
}

func (r *Resolver) fail(attachment *records.Attachment, operation string, err error) {
	message := fmt.Sprintf("%s: %v", operation, err)
	if attachment.Error == "" {
		attachment.Error = message
	} else {
		attachment.Error += "; " + message
	}
	r.logger.Warn("attachment resolution failed",
		logging.String("reference", attachment.SourceReference),
		logging.String("operation", operation),
		logging.Error(err),
	)
}
