// Package evaluate scores answered interviews. Each question and answer pair
// is judged and scored individually; the record gets the joined judgements
// and the mean score.
package evaluate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vetter/internal/logging"
	"vetter/internal/records"
	"vetter/internal/services"
	"vetter/internal/services/llm"
	"vetter/internal/textutil"
)

// Evaluator scores records whose answers are in but have no evaluation yet.
type Evaluator struct {
	store     *records.Store
	completer llm.Completer
	logger    *slog.Logger
}

// NewEvaluator constructs an evaluator.
func NewEvaluator(store *records.Store, completer llm.Completer, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		store:     store,
		completer: completer,
		logger:    logging.NewComponentLogger(logger, "evaluate"),
	}
}

// Run scans for answered records and evaluates them. A failure on any pair
// leaves that record unevaluated and eligible for the next scan; the rest of
// the batch proceeds. Returns the number of records evaluated.
func (e *Evaluator) Run(ctx context.Context) (int, error) {
	candidates, err := e.store.Find(ctx, records.PredicateReadyForEvaluation)
	if err != nil {
		return 0, services.Wrap(services.ErrCollaborator, "evaluate", "scan", "store query failed", err)
	}

	updated := 0
	for _, record := range candidates {
		logger := e.logger.With(logging.String(logging.FieldRecordKey, record.DedupKey))

		evaluation, err := e.evaluate(ctx, record)
		if err != nil {
			logger.Warn("evaluation failed", logging.Error(err))
			continue
		}

		record.Evaluation = evaluation
		if err := e.store.Upsert(ctx, record); err != nil {
			return updated, services.Wrap(services.ErrCollaborator, "evaluate", "store evaluation", "upsert failed", err)
		}
		updated++
		logger.Info("record evaluated", logging.Float64("score", evaluation.Score))
	}
	return updated, nil
}

// evaluate judges and scores every question and answer pair. All pairs must
// succeed before anything is recorded; a partial evaluation is never stored.
func (e *Evaluator) evaluate(ctx context.Context, record *records.Record) (*records.Evaluation, error) {
	pairs := len(record.Questions)
	if len(record.Answers) < pairs {
		pairs = len(record.Answers)
	}
	if pairs == 0 {
		return nil, services.Wrap(services.ErrValidation, "evaluate", "pair answers", "no question and answer pairs", nil)
	}

	judgements := make([]string, 0, pairs)
	total := 0.0
	for i := 0; i < pairs; i++ {
		judgement, err := e.completer.Complete(ctx, judgementConversation(record.Questions[i], record.Answers[i]))
		if err != nil {
			return nil, services.Wrap(services.ErrCollaborator, "evaluate", "judgement", fmt.Sprintf("pair %d completion failed", i+1), err)
		}

		scored, err := e.completer.Complete(ctx, scoringConversation(judgement))
		if err != nil {
			return nil, services.Wrap(services.ErrCollaborator, "evaluate", "scoring", fmt.Sprintf("pair %d completion failed", i+1), err)
		}
		score, ok := textutil.ParseBracketedScore(scored)
		if !ok {
			return nil, services.Wrap(services.ErrParse, "evaluate", "scoring", fmt.Sprintf("pair %d completion has no bracketed score", i+1), nil)
		}

		judgements = append(judgements, judgement)
		total += score
	}

	return &records.Evaluation{
		Commentary: strings.Join(judgements, "\n\n"),
		Score:      total / float64(pairs),
	}, nil
}
