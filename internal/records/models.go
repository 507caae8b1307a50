package records

import (
	"strings"
	"time"
)

// Attachment captures the outcome of resolving an attachment-typed field,
// successful or not. A failed resolution keeps the record in the pipeline
// with Error set and ExtractedText possibly empty.
type Attachment struct {
	SourceReference string `json:"source_reference"`
	LocalReference  string `json:"local_reference,omitempty"`
	ExtractedText   string `json:"extracted_text,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Evaluation aggregates the per-question judgement of a completed interview.
type Evaluation struct {
	Commentary string  `json:"commentary"`
	Score      float64 `json:"score"`
}

// Record is one applicant submission and its accumulated processing state.
type Record struct {
	ID          int64
	DedupKey    string
	SubmittedAt string
	Fields      map[string]string
	Attachment  *Attachment
	Questions   []string
	Answers     []string
	Evaluation  *Evaluation
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasQuestions reports whether the question list has been populated.
func (r *Record) HasQuestions() bool {
	return r != nil && len(r.Questions) > 0
}

// HasAnswers reports whether answers have been collected.
func (r *Record) HasAnswers() bool {
	return r != nil && len(r.Answers) > 0
}

// HasEvaluation reports whether the record has been scored.
func (r *Record) HasEvaluation() bool {
	return r != nil && r.Evaluation != nil
}

// HasExtractedText reports whether attachment resolution produced usable text.
func (r *Record) HasExtractedText() bool {
	return r != nil && r.Attachment != nil && strings.TrimSpace(r.Attachment.ExtractedText) != ""
}

// Field returns a normalized profile field value, or "" when absent.
func (r *Record) Field(name string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Stage names the furthest lifecycle point the record has reached. Used for
// CLI presentation and stats bucketing only; eligibility uses predicates.
func (r *Record) Stage() string {
	switch {
	case r.HasEvaluation():
		return "evaluated"
	case r.HasAnswers():
		return "answered"
	case r.HasQuestions():
		return "questioned"
	default:
		return "ingested"
	}
}

// Predicate names one of the closed set of store queries the scheduler runs
// each tick. Predicates are evaluated by the store, not by ad hoc filters.
type Predicate string

const (
	// PredicateAll matches every stored record.
	PredicateAll Predicate = "all"
	// PredicateMissingQuestions matches records with no questions yet whose
	// attachment produced non-empty extracted text.
	PredicateMissingQuestions Predicate = "missing_questions"
	// PredicateReadyForEvaluation matches records with questions and answers
	// populated but no evaluation.
	PredicateReadyForEvaluation Predicate = "ready_for_evaluation"
)

// Stats counts records per furthest-reached lifecycle bucket.
type Stats struct {
	Total      int
	Ingested   int
	Questioned int
	Answered   int
	Evaluated  int
}
