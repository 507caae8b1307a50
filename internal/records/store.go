package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vetter/internal/config"
)

// Store manages record persistence backed by SQLite. Every mutation is
// committed before the call returns, so a crash between ticks loses at most
// the in-flight stage result.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the record database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "records.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Upsert inserts the record when its dedup key is unseen, otherwise merges it
// into the stored record. Merging never rewinds questions or evaluation once
// populated. Returns ErrMissingDedupKey when the key is empty.
func (s *Store) Upsert(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	if strings.TrimSpace(record.DedupKey) == "" {
		return ErrMissingDedupKey
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := getByKey(ctx, tx, record.DedupKey)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if existing == nil {
		record.CreatedAt = now
		record.UpdatedAt = now
		id, err := insertRecord(ctx, tx, record)
		if err != nil {
			return err
		}
		record.ID = id
	} else {
		merged := mergeRecords(existing, record)
		merged.UpdatedAt = now
		if err := updateRecord(ctx, tx, merged); err != nil {
			return err
		}
		*record = *merged
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// ExistsDuplicate reports whether a record with the identical dedup key and
// submission timestamp is already stored.
func (s *Store) ExistsDuplicate(ctx context.Context, dedupKey, submittedAt string) (bool, error) {
	var count int
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM records WHERE dedup_key = ? AND submitted_at = ?`,
		dedupKey,
		submittedAt,
	)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return count > 0, nil
}

// GetByKey fetches a record by dedup key, returning nil when absent.
func (s *Store) GetByKey(ctx context.Context, dedupKey string) (*Record, error) {
	return getByKey(ctx, s.db, dedupKey)
}

// Find returns all records matching one of the closed set of predicates,
// ordered by creation time so a scan is stable.
func (s *Store) Find(ctx context.Context, predicate Predicate) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records`
	switch predicate {
	case PredicateAll:
	case PredicateMissingQuestions:
		query += ` WHERE has_questions = 0 AND has_text = 1`
	case PredicateReadyForEvaluation:
		query += ` WHERE has_questions = 1 AND has_answers = 1 AND has_evaluation = 0`
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPredicate, predicate)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer rows.Close()

	var found []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, record)
	}
	return found, rows.Err()
}

// Stats returns record counts per furthest-reached lifecycle bucket.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT has_questions, has_answers, has_evaluation, COUNT(1)
         FROM records GROUP BY has_questions, has_answers, has_evaluation`,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("record stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var questions, answers, evaluation, count int
		if err := rows.Scan(&questions, &answers, &evaluation, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		switch {
		case evaluation == 1:
			stats.Evaluated += count
		case answers == 1:
			stats.Answered += count
		case questions == 1:
			stats.Questioned += count
		default:
			stats.Ingested += count
		}
	}
	return stats, rows.Err()
}

// Remove deletes a record by dedup key.
func (s *Store) Remove(ctx context.Context, dedupKey string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE dedup_key = ?`, dedupKey)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records`)
	if err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}
	return res.RowsAffected()
}

// mergeRecords folds an incoming submission into the stored record. Profile
// fields, timestamp, attachment, and answers follow the incoming record;
// questions and evaluation are forward-only.
func mergeRecords(existing, incoming *Record) *Record {
	merged := *existing

	if incoming.SubmittedAt != "" {
		merged.SubmittedAt = incoming.SubmittedAt
	}
	if len(incoming.Fields) > 0 {
		if merged.Fields == nil {
			merged.Fields = make(map[string]string, len(incoming.Fields))
		}
		for name, value := range incoming.Fields {
			merged.Fields[name] = value
		}
	}
	if incoming.Attachment != nil {
		merged.Attachment = incoming.Attachment
	}
	if len(incoming.Answers) > 0 {
		merged.Answers = incoming.Answers
	}
	if !existing.HasQuestions() && incoming.HasQuestions() {
		merged.Questions = incoming.Questions
	}
	if !existing.HasEvaluation() && incoming.HasEvaluation() {
		merged.Evaluation = incoming.Evaluation
	}
	return &merged
}

const recordColumns = "id, dedup_key, submitted_at, fields_json, attachment_json, questions_json, answers_json, evaluation_json, created_at, updated_at"

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getByKey(ctx context.Context, q querier, dedupKey string) (*Record, error) {
	row := q.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE dedup_key = ?`, dedupKey)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, record *Record) (int64, error) {
	encoded, err := encodeRecord(record)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO records (
            dedup_key, submitted_at, fields_json, attachment_json,
            questions_json, answers_json, evaluation_json,
            has_text, has_questions, has_answers, has_evaluation,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.DedupKey,
		record.SubmittedAt,
		encoded.fields,
		encoded.attachment,
		encoded.questions,
		encoded.answers,
		encoded.evaluation,
		boolToInt(record.HasExtractedText()),
		boolToInt(record.HasQuestions()),
		boolToInt(record.HasAnswers()),
		boolToInt(record.HasEvaluation()),
		record.CreatedAt.Format(time.RFC3339Nano),
		record.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func updateRecord(ctx context.Context, tx *sql.Tx, record *Record) error {
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(
		ctx,
		`UPDATE records
         SET submitted_at = ?, fields_json = ?, attachment_json = ?,
             questions_json = ?, answers_json = ?, evaluation_json = ?,
             has_text = ?, has_questions = ?, has_answers = ?, has_evaluation = ?,
             updated_at = ?
         WHERE dedup_key = ?`,
		record.SubmittedAt,
		encoded.fields,
		encoded.attachment,
		encoded.questions,
		encoded.answers,
		encoded.evaluation,
		boolToInt(record.HasExtractedText()),
		boolToInt(record.HasQuestions()),
		boolToInt(record.HasAnswers()),
		boolToInt(record.HasEvaluation()),
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.DedupKey,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

type encodedRecord struct {
	fields     any
	attachment any
	questions  any
	answers    any
	evaluation any
}

func encodeRecord(record *Record) (encodedRecord, error) {
	var encoded encodedRecord
	var err error
	if encoded.fields, err = marshalNullable(record.Fields, len(record.Fields) > 0); err != nil {
		return encoded, fmt.Errorf("marshal fields: %w", err)
	}
	if encoded.attachment, err = marshalNullable(record.Attachment, record.Attachment != nil); err != nil {
		return encoded, fmt.Errorf("marshal attachment: %w", err)
	}
	if encoded.questions, err = marshalNullable(record.Questions, len(record.Questions) > 0); err != nil {
		return encoded, fmt.Errorf("marshal questions: %w", err)
	}
	if encoded.answers, err = marshalNullable(record.Answers, len(record.Answers) > 0); err != nil {
		return encoded, fmt.Errorf("marshal answers: %w", err)
	}
	if encoded.evaluation, err = marshalNullable(record.Evaluation, record.Evaluation != nil); err != nil {
		return encoded, fmt.Errorf("marshal evaluation: %w", err)
	}
	return encoded, nil
}

func marshalNullable(value any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id          int64
		dedupKey    string
		submittedAt sql.NullString
		fieldsJSON  sql.NullString
		attachJSON  sql.NullString
		questJSON   sql.NullString
		answerJSON  sql.NullString
		evalJSON    sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&dedupKey,
		&submittedAt,
		&fieldsJSON,
		&attachJSON,
		&questJSON,
		&answerJSON,
		&evalJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:          id,
		DedupKey:    dedupKey,
		SubmittedAt: submittedAt.String,
	}

	if fieldsJSON.Valid && fieldsJSON.String != "" {
		if err := json.Unmarshal([]byte(fieldsJSON.String), &record.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
	}
	if attachJSON.Valid && attachJSON.String != "" {
		record.Attachment = &Attachment{}
		if err := json.Unmarshal([]byte(attachJSON.String), record.Attachment); err != nil {
			return nil, fmt.Errorf("unmarshal attachment: %w", err)
		}
	}
	if questJSON.Valid && questJSON.String != "" {
		if err := json.Unmarshal([]byte(questJSON.String), &record.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	if answerJSON.Valid && answerJSON.String != "" {
		if err := json.Unmarshal([]byte(answerJSON.String), &record.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if evalJSON.Valid && evalJSON.String != "" {
		record.Evaluation = &Evaluation{}
		if err := json.Unmarshal([]byte(evalJSON.String), record.Evaluation); err != nil {
			return nil, fmt.Errorf("unmarshal evaluation: %w", err)
		}
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
