package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// storedFailure is the JSON shape of a DocumentFailure.
type storedFailure struct {
	DocumentID string `json:"document_id"`
	Stage      string `json:"stage"`
	Error      string `json:"error"`
}

// SaveRun stores or replaces a report.
func (s *runStore) SaveRun(ctx context.Context, report *domain.BatchReport) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}

	failures := make([]storedFailure, len(report.Failures))
	for i, f := range report.Failures {
		failures[i] = storedFailure{DocumentID: f.DocumentID, Stage: string(f.Stage), Error: f.Error}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("marshalling failures: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO batch_runs (run_id, batch, resource, started_at, ended_at,
			total, persisted, failed, skipped, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			batch = excluded.batch,
			resource = excluded.resource,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			total = excluded.total,
			persisted = excluded.persisted,
			failed = excluded.failed,
			skipped = excluded.skipped,
			failures = excluded.failures
	`, report.RunID, report.Batch, report.Resource,
		report.StartedAt.UTC().Format(timeLayout), formatNullableTime(report.EndedAt),
		report.Total, report.Persisted, report.Failed, report.Skipped, string(failuresJSON))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetRun retrieves a report by run ID.
func (s *runStore) GetRun(ctx context.Context, runID string) (*domain.BatchReport, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM batch_runs WHERE run_id = ?", runID)
	return scanRun(row)
}

// ListRuns returns the most recent reports first.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.BatchReport, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM batch_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.BatchReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return reports, nil
}

const runColumns = `run_id, batch, resource, started_at, ended_at,
	total, persisted, failed, skipped, failures`

func scanRun(row rowScanner) (*domain.BatchReport, error) {
	var r domain.BatchReport
	var startedAt, endedAt sql.NullString
	var failuresJSON string

	if err := row.Scan(&r.RunID, &r.Batch, &r.Resource, &startedAt, &endedAt,
		&r.Total, &r.Persisted, &r.Failed, &r.Skipped, &failuresJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	r.StartedAt = parseNullableTime(startedAt)
	r.EndedAt = parseNullableTime(endedAt)

	var failures []storedFailure
	if err := json.Unmarshal([]byte(failuresJSON), &failures); err != nil {
		return nil, fmt.Errorf("unmarshalling failures: %w", err)
	}
	for _, f := range failures {
		r.Failures = append(r.Failures, domain.DocumentFailure{
			DocumentID: f.DocumentID,
			Stage:      domain.DocumentState(f.Stage),
			Error:      f.Error,
		})
	}
	return &r, nil
}
