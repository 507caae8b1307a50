package records_test

import (
	"context"
	"errors"
	"testing"

	"vetter/internal/records"
	"vetter/internal/testsupport"
)

func TestUpsertInsertsAndFetches(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := &records.Record{
		DedupKey:    "0811",
		SubmittedAt: "T1",
		Fields:      map[string]string{"full_name": "Ayu", "desired_position": "Backend Engineer"},
	}
	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if record.ID == 0 {
		t.Fatal("expected record ID to be assigned")
	}

	fetched, err := store.GetByKey(ctx, "0811")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if fetched == nil || fetched.Fields["full_name"] != "Ayu" {
		t.Fatalf("unexpected fetched record: %#v", fetched)
	}
	if fetched.Stage() != "ingested" {
		t.Fatalf("expected stage ingested, got %s", fetched.Stage())
	}
}

func TestUpsertRequiresDedupKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	err := store.Upsert(context.Background(), &records.Record{SubmittedAt: "T1"})
	if !errors.Is(err, records.ErrMissingDedupKey) {
		t.Fatalf("expected ErrMissingDedupKey, got %v", err)
	}
}

func TestExistsDuplicate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedRecord(t, store, &records.Record{DedupKey: "0811", SubmittedAt: "T1"})

	dup, err := store.ExistsDuplicate(ctx, "0811", "T1")
	if err != nil {
		t.Fatalf("ExistsDuplicate: %v", err)
	}
	if !dup {
		t.Fatal("expected duplicate for identical key and timestamp")
	}

	dup, err = store.ExistsDuplicate(ctx, "0811", "T2")
	if err != nil {
		t.Fatalf("ExistsDuplicate: %v", err)
	}
	if dup {
		t.Fatal("same key with different timestamp must not be a duplicate")
	}
}

func TestUpsertMergePreservesStageFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedRecord(t, store, &records.Record{
		DedupKey:    "0811",
		SubmittedAt: "T1",
		Fields:      map[string]string{"full_name": "Ayu"},
		Questions:   []string{"Q1", "Q2"},
		Evaluation:  &records.Evaluation{Commentary: "solid", Score: 80},
	})

	// Resubmission with a newer timestamp updates profile fields but must not
	// rewind questions or evaluation.
	update := &records.Record{
		DedupKey:    "0811",
		SubmittedAt: "T2",
		Fields:      map[string]string{"full_name": "Ayu Lestari"},
	}
	if err := store.Upsert(ctx, update); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	fetched, err := store.GetByKey(ctx, "0811")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if fetched.SubmittedAt != "T2" {
		t.Fatalf("expected submitted_at T2, got %s", fetched.SubmittedAt)
	}
	if fetched.Fields["full_name"] != "Ayu Lestari" {
		t.Fatalf("expected profile fields updated, got %#v", fetched.Fields)
	}
	if len(fetched.Questions) != 2 {
		t.Fatalf("questions were rewound: %#v", fetched.Questions)
	}
	if fetched.Evaluation == nil || fetched.Evaluation.Score != 80 {
		t.Fatalf("evaluation was rewound: %#v", fetched.Evaluation)
	}
}

func TestUpsertForwardOnlyQuestions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedRecord(t, store, &records.Record{
		DedupKey:  "0811",
		Questions: []string{"Q1"},
	})

	replacement := &records.Record{
		DedupKey:  "0811",
		Questions: []string{"different question"},
	}
	if err := store.Upsert(ctx, replacement); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	fetched, err := store.GetByKey(ctx, "0811")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if len(fetched.Questions) != 1 || fetched.Questions[0] != "Q1" {
		t.Fatalf("populated questions must never be replaced: %#v", fetched.Questions)
	}
}

func TestFindPredicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// No extracted text: never eligible for question generation.
	testsupport.SeedRecord(t, store, &records.Record{DedupKey: "no-text"})
	// Extracted text present, questions missing: eligible.
	testsupport.SeedRecord(t, store, &records.Record{
		DedupKey:   "eligible",
		Attachment: &records.Attachment{SourceReference: "U", ExtractedText: "resume body"},
	})
	// Questions already set: not eligible.
	testsupport.SeedRecord(t, store, &records.Record{
		DedupKey:   "questioned",
		Attachment: &records.Attachment{SourceReference: "U", ExtractedText: "resume body"},
		Questions:  []string{"Q1"},
	})
	// Questions and answers set: ready for evaluation.
	testsupport.SeedRecord(t, store, &records.Record{
		DedupKey:  "ready",
		Questions: []string{"Q1"},
		Answers:   []string{"A1"},
	})
	// Already evaluated: not eligible.
	testsupport.SeedRecord(t, store, &records.Record{
		DedupKey:   "done",
		Questions:  []string{"Q1"},
		Answers:    []string{"A1"},
		Evaluation: &records.Evaluation{Score: 90},
	})

	missing, err := store.Find(ctx, records.PredicateMissingQuestions)
	if err != nil {
		t.Fatalf("Find missing questions: %v", err)
	}
	if len(missing) != 1 || missing[0].DedupKey != "eligible" {
		t.Fatalf("unexpected missing-questions result: %#v", missing)
	}
	for _, record := range missing {
		if record.HasQuestions() {
			t.Fatalf("missing-questions scan returned record with questions: %s", record.DedupKey)
		}
	}

	ready, err := store.Find(ctx, records.PredicateReadyForEvaluation)
	if err != nil {
		t.Fatalf("Find ready: %v", err)
	}
	if len(ready) != 1 || ready[0].DedupKey != "ready" {
		t.Fatalf("unexpected ready-for-evaluation result: %#v", ready)
	}
	for _, record := range ready {
		if !record.HasAnswers() {
			t.Fatalf("ready scan returned record without answers: %s", record.DedupKey)
		}
	}

	all, err := store.Find(ctx, records.PredicateAll)
	if err != nil {
		t.Fatalf("Find all: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 records, got %d", len(all))
	}
}

func TestFindRejectsUnknownPredicate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.Find(context.Background(), records.Predicate("sneaky")); !errors.Is(err, records.ErrUnknownPredicate) {
		t.Fatalf("expected ErrUnknownPredicate, got %v", err)
	}
}

func TestStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedRecord(t, store, &records.Record{DedupKey: "a"})
	testsupport.SeedRecord(t, store, &records.Record{DedupKey: "b", Questions: []string{"Q"}})
	testsupport.SeedRecord(t, store, &records.Record{DedupKey: "c", Questions: []string{"Q"}, Answers: []string{"A"}})
	testsupport.SeedRecord(t, store, &records.Record{
		DedupKey: "d", Questions: []string{"Q"}, Answers: []string{"A"},
		Evaluation: &records.Evaluation{Score: 75},
	})

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := records.Stats{Total: 4, Ingested: 1, Questioned: 1, Answered: 1, Evaluated: 1}
	if stats != want {
		t.Fatalf("Stats = %+v, want %+v", stats, want)
	}
}

func TestRemoveAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedRecord(t, store, &records.Record{DedupKey: "a"})
	testsupport.SeedRecord(t, store, &records.Record{DedupKey: "b"})

	removed, err := store.Remove(ctx, "a")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("expected record to be removed")
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 record cleared, got %d", cleared)
	}
}

func TestAttachmentRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedRecord(t, store, &records.Record{
		DedupKey: "0811",
		Attachment: &records.Attachment{
			SourceReference: "https://example.com/file/d/abc",
			Error:           "could not extract file ID from URL",
		},
	})

	fetched, err := store.GetByKey(ctx, "0811")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if fetched.Attachment == nil || fetched.Attachment.Error == "" {
		t.Fatalf("attachment error not persisted: %#v", fetched.Attachment)
	}
	if fetched.HasExtractedText() {
		t.Fatal("failed attachment must not report extracted text")
	}
}
