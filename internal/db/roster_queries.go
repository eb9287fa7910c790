package db

import (
	"context"
	"fmt"

	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

// ReplaceRoster replaces every location of a project in one transaction.
// Roster order is preserved through the position column.
func (db *DB) ReplaceRoster(ctx context.Context, roster *models.Roster) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin roster transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE project_name = ?`, roster.Project); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO locations (project_name, loc_id, site_name, position)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare roster insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, loc := range roster.Locations {
		if _, err := stmt.ExecContext(ctx, roster.Project, loc.ID, loc.DisplayName, i); err != nil {
			return fmt.Errorf("failed to insert location %s: %w", loc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit roster: %w", err)
	}
	return nil
}

// GetRoster loads a project's roster in import order. A project with no
// locations yields an empty roster, not an error.
func (db *DB) GetRoster(ctx context.Context, project string) (*models.Roster, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT loc_id, site_name
		FROM locations
		WHERE project_name = ?
		ORDER BY position ASC
	`, project)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	roster := &models.Roster{Project: project}
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		roster.Locations = append(roster.Locations, loc)
	}

	return roster, rows.Err()
}

// DeleteRoster removes every location of a project.
func (db *DB) DeleteRoster(ctx context.Context, project string) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM locations WHERE project_name = ?`, project)
	if err != nil {
		return 0, fmt.Errorf("failed to delete roster: %w", err)
	}
	return result.RowsAffected()
}

// ListProjects returns every project with a stored roster.
func (db *DB) ListProjects(ctx context.Context) ([]models.ProjectSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT project_name, COUNT(*)
		FROM locations
		GROUP BY project_name
		ORDER BY project_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []models.ProjectSummary
	for rows.Next() {
		var p models.ProjectSummary
		if err := rows.Scan(&p.Name, &p.LocationCount); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
