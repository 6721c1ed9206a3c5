package services

import (
	"context"

	"funnel-copilot/internal/models"
)

// Meter is the credit gate every paid flow charges before doing work.
type Meter interface {
	Charge(ctx context.Context, userID, operation string, amount int64) error
	Refund(ctx context.Context, userID string, amount int64) error
}

// ReportReader gives flows access to the user's latest diagnosis.
type ReportReader interface {
	GetLatestDiagnosis(ctx context.Context, userID string) (*models.DiagnosticReport, error)
}

// ReportStore extends ReportReader with persistence and the
// first-diagnosis eligibility check.
type ReportStore interface {
	ReportReader
	SaveDiagnosis(ctx context.Context, report *models.DiagnosticReport) error
	HasDiagnosis(ctx context.Context, userID string) (bool, error)
}
