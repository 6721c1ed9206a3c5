package postgresrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"funnel-copilot/internal/models"

	"github.com/jmoiron/sqlx"
)

var ErrReportNotFound = errors.New("diagnosis report not found")

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SaveDiagnosis persists a generated diagnostic report.
func (r *ReportRepository) SaveDiagnosis(ctx context.Context, report *models.DiagnosticReport) error {
	stages, err := json.Marshal(report.Stages)
	if err != nil {
		return fmt.Errorf("failed to marshal report stages: %w", err)
	}

	query := `
		INSERT INTO diagnoses (id, user_id, score, stages, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.ExecContext(ctx, query, report.ID, report.UserID, report.Score, stages, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save diagnosis: %w", err)
	}

	return nil
}

// GetLatestDiagnosis returns the most recent report for a user.
func (r *ReportRepository) GetLatestDiagnosis(ctx context.Context, userID string) (*models.DiagnosticReport, error) {
	query := `
		SELECT id, user_id, score, stages, created_at
		FROM diagnoses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var report models.DiagnosticReport
	var stages []byte

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&report.ID,
		&report.UserID,
		&report.Score,
		&stages,
		&report.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get diagnosis from postgres: %w", err)
	}

	if err := json.Unmarshal(stages, &report.Stages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report stages: %w", err)
	}

	return &report, nil
}

// HasDiagnosis reports whether a user has ever completed a diagnosis.
// This is the server-side eligibility check behind the free first
// diagnosis; the client has no say in it.
func (r *ReportRepository) HasDiagnosis(ctx context.Context, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM diagnoses WHERE user_id = $1)`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check diagnosis existence: %w", err)
	}

	return exists, nil
}
