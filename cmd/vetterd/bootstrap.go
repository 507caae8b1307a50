package main

import (
	"log/slog"

	"vetter/internal/config"
	"vetter/internal/enrich"
	"vetter/internal/evaluate"
	"vetter/internal/ingest"
	"vetter/internal/pipeline"
	"vetter/internal/questions"
	"vetter/internal/records"
	"vetter/internal/services/drive"
	"vetter/internal/services/llm"
	"vetter/internal/services/sheets"
)

// buildPipeline wires the stage handlers against their collaborators.
func buildPipeline(cfg *config.Config, store *records.Store, logger *slog.Logger) *pipeline.Manager {
	source := sheets.NewHTTPFetcher(cfg.Source, nil)
	storage := drive.NewService(cfg.Source.Token)
	completer := llm.NewClient(cfg.LLM)

	resolver := enrich.NewResolver(cfg, storage, logger)
	ingestor := ingest.New(cfg, store, source, resolver, logger)
	generator := questions.NewGenerator(cfg, store, completer, logger)
	evaluator := evaluate.NewEvaluator(store, completer, logger)

	return pipeline.NewManager(cfg, ingestor, generator, evaluator, logger)
}
