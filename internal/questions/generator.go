// Package questions generates interview questions for records whose resume
// text has been extracted but that have no questions yet.
package questions

import (
	"context"
	"log/slog"

	"vetter/internal/config"
	"vetter/internal/logging"
	"vetter/internal/records"
	"vetter/internal/services"
	"vetter/internal/services/llm"
	"vetter/internal/textutil"
)

// Generator produces interview questions for eligible records.
type Generator struct {
	positionField string
	store         *records.Store
	completer     llm.Completer
	logger        *slog.Logger
}

// NewGenerator constructs a generator reading the desired position from the
// configured profile field.
func NewGenerator(cfg *config.Config, store *records.Store, completer llm.Completer, logger *slog.Logger) *Generator {
	return &Generator{
		positionField: cfg.Source.PositionField,
		store:         store,
		completer:     completer,
		logger:        logging.NewComponentLogger(logger, "questions"),
	}
}

// Run scans for records missing questions and fills them in. A failure on one
// record is logged and leaves that record eligible for the next scan; only a
// store scan failure aborts the pass. Returns the number of records updated.
func (g *Generator) Run(ctx context.Context) (int, error) {
	candidates, err := g.store.Find(ctx, records.PredicateMissingQuestions)
	if err != nil {
		return 0, services.Wrap(services.ErrCollaborator, "questions", "scan", "store query failed", err)
	}

	updated := 0
	for _, record := range candidates {
		logger := g.logger.With(logging.String(logging.FieldRecordKey, record.DedupKey))

		generated, err := g.generate(ctx, record)
		if err != nil {
			logger.Warn("question generation failed", logging.Error(err))
			continue
		}

		record.Questions = generated
		if err := g.store.Upsert(ctx, record); err != nil {
			return updated, services.Wrap(services.ErrCollaborator, "questions", "store questions", "upsert failed", err)
		}
		updated++
		logger.Info("questions generated", logging.Int("count", len(generated)))
	}
	return updated, nil
}

// generate runs the two-call flow: commentary on the resume against the
// desired position, then questions derived from that commentary.
func (g *Generator) generate(ctx context.Context, record *records.Record) ([]string, error) {
	resume := record.Attachment.ExtractedText
	position := record.Field(g.positionField)

	commentary, err := g.completer.Complete(ctx, commentaryConversation(resume, position))
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "questions", "commentary", "completion failed", err)
	}

	raw, err := g.completer.Complete(ctx, questionConversation(commentary))
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "questions", "question list", "completion failed", err)
	}

	parsed := textutil.ExtractBracketed(raw)
	if len(parsed) == 0 {
		return nil, services.Wrap(services.ErrParse, "questions", "question list", "no bracketed questions in completion", nil)
	}
	return parsed, nil
}
