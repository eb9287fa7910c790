package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

// InsertRun stores a finished run with its error log and summary rows.
func (db *DB) InsertRun(ctx context.Context, run *models.Run) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin run transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO fetch_runs (
			id, project_name, kind, mode, start_date, end_date, started_at,
			finished_at, total, success, empty, failed, cancelled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Project,
		string(run.Kind),
		run.Mode,
		run.Range.Start.Format(sqlDateLayout),
		run.Range.End.Format(sqlDateLayout),
		run.StartedAt.UTC().Format(sqlTimestampLayout),
		nullTime(run.FinishedAt),
		run.Total,
		run.Counts.Success,
		run.Counts.Empty,
		run.Counts.Failed,
		run.Cancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, e := range run.Errors {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_errors (run_id, seq, loc_id, site_name, kind, reason)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, i, e.LocationID, e.DisplayName, e.Kind.String(), e.Reason); err != nil {
			return fmt.Errorf("failed to insert run error: %w", err)
		}
	}

	for i, row := range run.SummaryRows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_summary_rows (run_id, rank, loc_id, site_name, total_usage_gb, avg_usage_gb)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, i+1, row.LocationID, row.DisplayName, row.TotalUsageGB, row.AvgUsageGB); err != nil {
			return fmt.Errorf("failed to insert summary row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RecentRuns returns the latest runs of a project, newest first. Errors and
// summary rows are not loaded.
func (db *DB) RecentRuns(ctx context.Context, project string, limit int) ([]models.Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, project_name, kind, mode, start_date, end_date, started_at,
			   finished_at, total, success, empty, failed, cancelled
		FROM fetch_runs
		WHERE project_name = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, project, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []models.Run
	for rows.Next() {
		var (
			run                      models.Run
			kind, startDate, endDate string
			startedAt                string
			finishedAt               sql.NullString
		)
		err := rows.Scan(
			&run.ID,
			&run.Project,
			&kind,
			&run.Mode,
			&startDate,
			&endDate,
			&startedAt,
			&finishedAt,
			&run.Total,
			&run.Counts.Success,
			&run.Counts.Empty,
			&run.Counts.Failed,
			&run.Cancelled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Kind = models.RunKind(kind)
		run.Range.Start, _ = time.Parse(sqlDateLayout, startDate)
		run.Range.End, _ = time.Parse(sqlDateLayout, endDate)
		run.StartedAt, _ = time.Parse(sqlTimestampLayout, startedAt)
		if finishedAt.Valid {
			run.FinishedAt, _ = time.Parse(sqlTimestampLayout, finishedAt.String)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRunErrors returns a run's error log in completion order.
func (db *DB) GetRunErrors(ctx context.Context, runID string) ([]models.ErrorLogEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT loc_id, site_name, kind, reason
		FROM run_errors
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run errors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.ErrorLogEntry
	for rows.Next() {
		var (
			e      models.ErrorLogEntry
			kind   string
			reason sql.NullString
		)
		if err := rows.Scan(&e.LocationID, &e.DisplayName, &kind, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan run error: %w", err)
		}
		e.Kind = parseOutcomeKind(kind)
		e.Reason = reason.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetRunSummary returns the ranked rows recorded for a summary run.
func (db *DB) GetRunSummary(ctx context.Context, runID string) ([]models.SummaryRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT loc_id, site_name, total_usage_gb, avg_usage_gb
		FROM run_summary_rows
		WHERE run_id = ?
		ORDER BY rank ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.SummaryRow
	for rows.Next() {
		var row models.SummaryRow
		if err := rows.Scan(&row.LocationID, &row.DisplayName, &row.TotalUsageGB, &row.AvgUsageGB); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func parseOutcomeKind(s string) models.OutcomeKind {
	switch s {
	case models.OutcomeSuccess.String():
		return models.OutcomeSuccess
	case models.OutcomeEmpty.String():
		return models.OutcomeEmpty
	default:
		return models.OutcomeConnectionError
	}
}

// nullTime converts a zero time to NULL.
func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(sqlTimestampLayout), Valid: true}
}
