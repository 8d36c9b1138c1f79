// Package repositories provides the persistence layer for transfer run history.
//
// RunRepository implements models.Repository[*models.RunRecord] on the local
// SQLite database, so operators can review what a best-effort run actually
// created, skipped or failed after the fact.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/shared"
)

// RunRepository persists per-group transfer summaries.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record with a generated ID.
func (r *RunRepository) Create(record *models.RunRecord) error {
	record.SetID(shared.GenerateID())
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now()
	}
	record.Updated = time.Now()

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, run_id, workspace, entity_group, created_count, skipped_count, failed_count, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.RecordID,
		record.RunID,
		record.Workspace,
		record.Group,
		record.Created,
		record.Skipped,
		record.Failed,
		record.StartedAt,
		record.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	return nil
}

// Get retrieves a run record by ID.
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	query := `
		SELECT id, run_id, workspace, entity_group, created_count, skipped_count, failed_count, started_at, updated_at
		FROM runs
		WHERE id = ?
	`
	return scanRecord(r.db.QueryRow(query, id))
}

// Update modifies an existing run record.
func (r *RunRepository) Update(record *models.RunRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	record.Updated = time.Now()

	query := `
		UPDATE runs
		SET created_count = ?, skipped_count = ?, failed_count = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, record.Created, record.Skipped, record.Failed, record.Updated, record.RecordID)
	if err != nil {
		return fmt.Errorf("failed to update run record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run record not found: %s", record.RecordID)
	}

	return nil
}

// Delete removes a run record by ID.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run record not found: %s", id)
	}

	return nil
}

// List retrieves run records matching the given criteria, newest first.
// Supported criteria: "run_id" and "workspace".
func (r *RunRepository) List(criteria map[string]any) ([]*models.RunRecord, error) {
	query := `
		SELECT id, run_id, workspace, entity_group, created_count, skipped_count, failed_count, started_at, updated_at
		FROM runs
		WHERE 1 = 1
	`
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}
	if workspace, ok := criteria["workspace"].(string); ok && workspace != "" {
		query += " AND workspace = ?"
		args = append(args, workspace)
	}

	query += " ORDER BY started_at DESC, workspace, entity_group"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer rows.Close()

	var records []*models.RunRecord
	for rows.Next() {
		var record models.RunRecord
		if err := rows.Scan(
			&record.RecordID,
			&record.RunID,
			&record.Workspace,
			&record.Group,
			&record.Created,
			&record.Skipped,
			&record.Failed,
			&record.StartedAt,
			&record.Updated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// scanRecord scans a single row into a [models.RunRecord].
func scanRecord(row *sql.Row) (*models.RunRecord, error) {
	var record models.RunRecord
	err := row.Scan(
		&record.RecordID,
		&record.RunID,
		&record.Workspace,
		&record.Group,
		&record.Created,
		&record.Skipped,
		&record.Failed,
		&record.StartedAt,
		&record.Updated,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run record: %w", err)
	}
	return &record, nil
}
