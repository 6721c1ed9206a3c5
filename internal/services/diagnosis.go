package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"funnel-copilot/internal/billing"
	"funnel-copilot/internal/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type DiagnosisGenerator interface {
	GenerateDiagnosis(ctx context.Context, company models.CompanyProfile, metrics models.FunnelMetrics) ([]models.StageReport, error)
	GenerateSectionDetail(ctx context.Context, section models.StageReport, question string) (*models.SectionDetail, error)
}

type DiagnosisService struct {
	meter   Meter
	reports ReportStore
	gen     DiagnosisGenerator
}

func NewDiagnosisService(meter Meter, reports ReportStore, gen DiagnosisGenerator) *DiagnosisService {
	return &DiagnosisService{
		meter:   meter,
		reports: reports,
		gen:     gen,
	}
}

// RunDiagnosis generates and stores a full funnel diagnosis. The first
// diagnosis of a user's life is free; eligibility is decided here from
// the system of record, never from a client flag. Every later run is
// charged before the model is called, and refunded if generation fails.
func (s *DiagnosisService) RunDiagnosis(ctx context.Context, req models.DiagnosisRequest) (*models.DiagnosticReport, error) {
	hasPrior, err := s.reports.HasDiagnosis(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check diagnosis eligibility: %w", err)
	}

	cost := billing.Cost(models.OperationDiagnosis)
	charged := false
	if hasPrior {
		if err := s.meter.Charge(ctx, req.UserID, models.OperationDiagnosis, cost); err != nil {
			return nil, err
		}
		charged = true
	}

	stages, err := s.gen.GenerateDiagnosis(ctx, req.Company, req.Metrics)
	if err != nil {
		if charged {
			s.refund(ctx, req.UserID, cost)
		}
		return nil, err
	}

	report := &models.DiagnosticReport{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Score:     ScoreStages(stages),
		Stages:    stages,
		Charged:   charged,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.reports.SaveDiagnosis(ctx, report); err != nil {
		// The user paid and the report exists; losing persistence is
		// not worth losing the result.
		log.WithError(err).WithField("user", req.UserID).Warn("diagnosis generated but not persisted")
	}

	return report, nil
}

func (s *DiagnosisService) LatestDiagnosis(ctx context.Context, userID string) (*models.DiagnosticReport, error) {
	return s.reports.GetLatestDiagnosis(ctx, userID)
}

// SectionDetail produces an on-demand deep dive into one stage of the
// user's latest report.
func (s *DiagnosisService) SectionDetail(ctx context.Context, userID, stage, question string) (*models.SectionDetail, error) {
	report, err := s.reports.GetLatestDiagnosis(ctx, userID)
	if err != nil {
		return nil, err
	}

	var section *models.StageReport
	for i := range report.Stages {
		if report.Stages[i].Stage == stage {
			section = &report.Stages[i]
			break
		}
	}
	if section == nil {
		return nil, fmt.Errorf("stage %q not present in latest report", stage)
	}

	cost := billing.Cost(models.OperationSectionDetail)
	if err := s.meter.Charge(ctx, userID, models.OperationSectionDetail, cost); err != nil {
		return nil, err
	}

	detail, err := s.gen.GenerateSectionDetail(ctx, *section, question)
	if err != nil {
		s.refund(ctx, userID, cost)
		return nil, err
	}

	return detail, nil
}

func (s *DiagnosisService) refund(ctx context.Context, userID string, amount int64) {
	if err := s.meter.Refund(ctx, userID, amount); err != nil {
		log.WithError(err).WithField("user", userID).Error("failed to refund charge after generation failure")
	}
}

// ScoreStages aggregates stage statuses into a 0-100 funnel score.
func ScoreStages(stages []models.StageReport) int {
	if len(stages) == 0 {
		return 0
	}

	total := 0
	for _, s := range stages {
		switch s.Status {
		case models.StatusGreen:
			total += 100
		case models.StatusAmber:
			total += 60
		case models.StatusRed:
			total += 20
		}
	}

	return int(math.Round(float64(total) / float64(len(stages))))
}
