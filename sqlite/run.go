package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/distill"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ distill.RunService = (*RunService)(nil)

// RunService implements distill.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores run with every object, record and value in one
// transaction. It assigns ID and CreatedAt.
func (s *RunService) CreateRun(ctx context.Context, run *distill.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	createdAt := time.Now().UTC().Truncate(time.Second)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, source_url, document_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, id, run.SourceURL, run.DocumentHash, createdAt.Format(time.RFC3339)); err != nil {
		return err
	}

	for objPos, obj := range run.Result {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_objects (run_id, position, object_id, record_count)
			VALUES (?, ?, ?, ?)
		`, id, objPos, obj.ObjectID, len(obj.Records)); err != nil {
			return err
		}

		for recIdx, rec := range obj.Records {
			propPos := 0
			for key, v := range rec.All() {
				kind, text := encodeValue(v)
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO run_values (run_id, object_position, record_index, property_position, property_id, kind, value)
					VALUES (?, ?, ?, ?, ?, ?, ?)
				`, id, objPos, recIdx, propPos, key, kind, text); err != nil {
					return err
				}
				propPos++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	run.ID = id
	run.CreatedAt = createdAt
	return nil
}

// FindRunByID retrieves a run and rebuilds its result in stored order.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*distill.Run, error) {
	var run distill.Run
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_url, document_hash, created_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.SourceURL, &run.DocumentHash, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, distill.Errorf(distill.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	if run.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}

	if run.Result, err = s.findResult(ctx, id); err != nil {
		return nil, err
	}

	return &run, nil
}

// findResult loads the objects of a run with empty records, then fills
// the records from the stored values.
func (s *RunService) findResult(ctx context.Context, runID string) (distill.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT object_id, record_count
		FROM run_objects
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := distill.Result{}
	for rows.Next() {
		var obj distill.ExtractedObject
		var recordCount int
		if err := rows.Scan(&obj.ObjectID, &recordCount); err != nil {
			return nil, err
		}
		obj.Records = make([]*distill.Record, recordCount)
		for i := range obj.Records {
			obj.Records[i] = distill.NewRecord(0)
		}
		result = append(result, &obj)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	values, err := s.db.QueryContext(ctx, `
		SELECT object_position, record_index, property_id, kind, value
		FROM run_values
		WHERE run_id = ?
		ORDER BY object_position ASC, record_index ASC, property_position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer values.Close()

	for values.Next() {
		var objPos, recIdx int
		var key, kind string
		var text sql.NullString
		if err := values.Scan(&objPos, &recIdx, &key, &kind, &text); err != nil {
			return nil, err
		}
		if objPos >= len(result) || recIdx >= len(result[objPos].Records) {
			return nil, distill.Errorf(distill.EINTERNAL, "run %s has a value outside its records", runID)
		}
		v, err := decodeValue(kind, text)
		if err != nil {
			return nil, err
		}
		result[objPos].Records[recIdx].Set(key, v)
	}

	return result, values.Err()
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter distill.RunFilter) ([]*distill.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, source_url, document_hash, created_at FROM runs WHERE 1=1")

	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*distill.Run
	for rows.Next() {
		var run distill.Run
		var createdAt string

		if err := rows.Scan(&run.ID, &run.SourceURL, &run.DocumentHash, &createdAt); err != nil {
			return nil, err
		}

		if run.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// DeleteRun permanently removes a run with its objects and values.
func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return distill.Errorf(distill.ENOTFOUND, "run not found")
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_objects WHERE run_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM run_values WHERE run_id = ?", id); err != nil {
		return err
	}

	return tx.Commit()
}
