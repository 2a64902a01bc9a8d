package db

import (
	"context"
	"fmt"

	"clinical-dashboard/internal/models"

	"github.com/google/uuid"
)

// SaveDiagnostic inserts a diagnostic record. It generates an id if the
// record has none.
func (d *DB) SaveDiagnostic(ctx context.Context, diag models.Diagnostic) error {
	id, err := uuid.Parse(diag.ID)
	if err != nil {
		id = uuid.New()
	}

	query := `
    INSERT INTO diagnostics (id, source, subject, input, reason, patient_id, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = d.Pool.Exec(ctx, query,
		id,
		diag.Source,
		diag.Subject,
		diag.Input,
		diag.Reason,
		diag.PatientID,
		diag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert diagnostic: %w", err)
	}
	return nil
}

// ListDiagnostics returns the most recent diagnostics, newest first.
func (d *DB) ListDiagnostics(ctx context.Context, limit int) ([]models.Diagnostic, error) {
	query := `
    SELECT id, source, subject, input, reason, patient_id, created_at
    FROM diagnostics
    ORDER BY created_at DESC
    LIMIT $1`

	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	list := []models.Diagnostic{}
	for rows.Next() {
		var (
			diag models.Diagnostic
			id   uuid.UUID
		)
		if err := rows.Scan(&id, &diag.Source, &diag.Subject, &diag.Input, &diag.Reason, &diag.PatientID, &diag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		diag.ID = id.String()
		list = append(list, diag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate diagnostics: %w", err)
	}
	return list, nil
}
