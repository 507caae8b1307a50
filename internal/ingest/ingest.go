// Package ingest pulls raw submissions from the configured row source and
// turns the new ones into stored records.
package ingest

import (
	"context"
	"log/slog"
	"strings"

	"vetter/internal/config"
	"vetter/internal/enrich"
	"vetter/internal/logging"
	"vetter/internal/records"
	"vetter/internal/services"
	"vetter/internal/services/sheets"
	"vetter/internal/textutil"
)

// Summary reports what one ingest pass did with the fetched rows.
type Summary struct {
	Fetched   int
	Processed int
	Skipped   int
	Missing   int
}

// Ingestor fetches rows, filters duplicates, and stores the remainder with
// their attachments already resolved.
type Ingestor struct {
	cfg      *config.Config
	store    *records.Store
	source   sheets.Fetcher
	resolver *enrich.Resolver
	logger   *slog.Logger
}

// New constructs an ingestor.
func New(cfg *config.Config, store *records.Store, source sheets.Fetcher, resolver *enrich.Resolver, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		cfg:      cfg,
		store:    store,
		source:   source,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "ingest"),
	}
}

// Run performs one ingest pass. A source or store failure aborts the pass;
// per-row problems are counted and logged without touching the other rows.
// The duplicate check runs before attachment resolution so rows already on
// file never trigger downloads again.
func (i *Ingestor) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	rows, err := i.source.FetchAll(ctx)
	if err != nil {
		return summary, err
	}
	summary.Fetched = len(rows)

	for _, row := range rows {
		dedupKey := strings.TrimSpace(row[i.cfg.Source.PhoneField])
		if dedupKey == "" {
			summary.Missing++
			i.logger.Warn("row skipped",
				logging.Error(services.Wrap(services.ErrMissingKey, "ingest", "derive key", "row has no phone number", nil)),
			)
			continue
		}
		submittedAt := strings.TrimSpace(row[i.cfg.Source.TimestampField])

		duplicate, err := i.store.ExistsDuplicate(ctx, dedupKey, submittedAt)
		if err != nil {
			return summary, services.Wrap(services.ErrCollaborator, "ingest", "duplicate check", "store query failed", err)
		}
		if duplicate {
			summary.Skipped++
			continue
		}

		record := buildRecord(dedupKey, submittedAt, row)
		i.resolver.Enrich(ctx, record, i.cfg.Fields)

		if err := i.store.Upsert(ctx, record); err != nil {
			return summary, services.Wrap(services.ErrCollaborator, "ingest", "store record", "upsert failed", err)
		}
		summary.Processed++
		i.logger.Info("record ingested",
			logging.String(logging.FieldRecordKey, dedupKey),
			logging.Bool("has_text", record.HasExtractedText()),
		)
	}

	i.logger.Info("ingest pass complete",
		logging.Int("fetched", summary.Fetched),
		logging.Int("processed", summary.Processed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("missing_key", summary.Missing),
	)
	return summary, nil
}

func buildRecord(dedupKey, submittedAt string, row sheets.Row) *records.Record {
	fields := make(map[string]string, len(row))
	for name, value := range row {
		fields[textutil.NormalizeFieldName(name)] = value
	}
	return &records.Record{
		DedupKey:    dedupKey,
		SubmittedAt: submittedAt,
		Fields:      fields,
		Questions:   []string{},
		Answers:     []string{},
	}
}
