package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
	"github.com/ericfisherdev/mybitbucket/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FailureStore = (*FailureRepo)(nil)

// DefaultListLimit is used by ListRecent when no positive limit is given.
const DefaultListLimit = 50

// occurredAtLayout keeps occurred_at lexically sortable.
const occurredAtLayout = "2006-01-02T15:04:05.000000000Z"

// FailureRepo is the SQLite implementation of the FailureStore port interface.
type FailureRepo struct {
	db *DB
}

// NewFailureRepo creates a new FailureRepo backed by the given DB.
func NewFailureRepo(db *DB) *FailureRepo {
	return &FailureRepo{db: db}
}

// Record journals one sentinel and returns its row ID. A zero OccurredAt is
// replaced by the current time.
func (r *FailureRepo) Record(ctx context.Context, rec model.FailureRecord) (int64, error) {
	errs := rec.Errors
	if errs == nil {
		errs = []model.Error{}
	}
	errorsJSON, err := json.Marshal(errs)
	if err != nil {
		return 0, fmt.Errorf("marshal errors for %s: %w", rec.Operation, err)
	}

	occurredAt := rec.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	const query = `
		INSERT INTO failures (operation, record_type, resource, errors_json, primary_message, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.Writer.ExecContext(ctx, query,
		rec.Operation,
		rec.Record,
		rec.Resource,
		string(errorsJSON),
		rec.PrimaryMessage(),
		occurredAt.UTC().Format(occurredAtLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("record failure for %s %s: %w", rec.Operation, rec.Resource, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get failure id: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit journal entries, newest first.
func (r *FailureRepo) ListRecent(ctx context.Context, limit int) ([]model.FailureRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	const query = `
		SELECT id, operation, record_type, resource, errors_json, occurred_at
		FROM failures
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	result := []model.FailureRecord{}
	for rows.Next() {
		var (
			rec        model.FailureRecord
			errorsJSON string
			occurredAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Operation, &rec.Record, &rec.Resource, &errorsJSON, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		if err := json.Unmarshal([]byte(errorsJSON), &rec.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal errors for failure %d: %w", rec.ID, err)
		}
		rec.OccurredAt, err = parseTime(occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at for failure %d: %w", rec.ID, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return result, nil
}

// CountByRecord returns the number of journalled failures per record type.
func (r *FailureRepo) CountByRecord(ctx context.Context) (map[string]int, error) {
	const query = `SELECT record_type, COUNT(*) FROM failures GROUP BY record_type`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count failures: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var (
			recordType string
			count      int
		)
		if err := rows.Scan(&recordType, &count); err != nil {
			return nil, fmt.Errorf("scan failure count: %w", err)
		}
		result[recordType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failure counts: %w", err)
	}
	return result, nil
}

// parseTime parses the timestamp formats SQLite and this package write.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		occurredAtLayout,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
