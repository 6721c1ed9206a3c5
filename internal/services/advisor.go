package services

import (
	"context"
	"errors"
	"time"

	"funnel-copilot/internal/billing"
	"funnel-copilot/internal/models"
	"funnel-copilot/internal/repositories/postgresrepo"

	log "github.com/sirupsen/logrus"
)

type PlanGenerator interface {
	GenerateActionPlan(ctx context.Context, objective string, report *models.DiagnosticReport) (*models.ActionPlan, error)
}

type CreativeGenerator interface {
	GenerateCreatives(ctx context.Context, req models.CreativeRequest) ([]models.AdCreative, error)
}

type AnalysisGenerator interface {
	GenerateWeeklyAnalysis(ctx context.Context, usage *models.WeeklyUsage, report *models.DiagnosticReport) (*models.WeeklyAnalysis, error)
}

type UsageReader interface {
	GetWeeklyUsage(ctx context.Context, userID string, weekStart time.Time) (*models.WeeklyUsage, error)
}

type AdvisorGenerator interface {
	PlanGenerator
	CreativeGenerator
	AnalysisGenerator
}

// AdvisorService hosts the remaining paid flows: advanced action plans,
// ad-creative generation and the weekly analysis. All three charge
// first and propagate failures unchanged (no chat-style fallback).
type AdvisorService struct {
	meter     Meter
	reports   ReportReader
	usage     UsageReader
	plans     PlanGenerator
	creatives CreativeGenerator
	analyses  AnalysisGenerator
}

func NewAdvisorService(meter Meter, reports ReportReader, usage UsageReader, gen AdvisorGenerator) *AdvisorService {
	return &AdvisorService{
		meter:     meter,
		reports:   reports,
		usage:     usage,
		plans:     gen,
		creatives: gen,
		analyses:  gen,
	}
}

func (s *AdvisorService) GeneratePlan(ctx context.Context, req models.PlanRequest) (*models.ActionPlan, error) {
	report, err := s.latestReport(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	cost := billing.Cost(models.OperationAdvancedPlan)
	if err := s.meter.Charge(ctx, req.UserID, models.OperationAdvancedPlan, cost); err != nil {
		return nil, err
	}

	plan, err := s.plans.GenerateActionPlan(ctx, req.Objective, report)
	if err != nil {
		s.refund(ctx, req.UserID, cost)
		return nil, err
	}

	return plan, nil
}

func (s *AdvisorService) GenerateCreatives(ctx context.Context, req models.CreativeRequest) (*models.CreativeResponse, error) {
	cost := billing.Cost(models.OperationAdCreative)
	if err := s.meter.Charge(ctx, req.UserID, models.OperationAdCreative, cost); err != nil {
		return nil, err
	}

	creatives, err := s.creatives.GenerateCreatives(ctx, req)
	if err != nil {
		s.refund(ctx, req.UserID, cost)
		return nil, err
	}

	return &models.CreativeResponse{Creatives: creatives}, nil
}

func (s *AdvisorService) WeeklyAnalysis(ctx context.Context, req models.WeeklyAnalysisRequest) (*models.WeeklyAnalysis, error) {
	lastWeek := WeekStart(time.Now().UTC()).AddDate(0, 0, -7)
	usage, err := s.usage.GetWeeklyUsage(ctx, req.UserID, lastWeek)
	if err != nil && !errors.Is(err, postgresrepo.ErrUsageNotFound) {
		return nil, err
	}

	report, err := s.latestReport(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	cost := billing.Cost(models.OperationWeeklyAnalysis)
	if err := s.meter.Charge(ctx, req.UserID, models.OperationWeeklyAnalysis, cost); err != nil {
		return nil, err
	}

	analysis, err := s.analyses.GenerateWeeklyAnalysis(ctx, usage, report)
	if err != nil {
		s.refund(ctx, req.UserID, cost)
		return nil, err
	}

	return analysis, nil
}

// latestReport loads the user's latest diagnosis if one exists; the
// flows that use it only enrich their prompts with it.
func (s *AdvisorService) latestReport(ctx context.Context, userID string) (*models.DiagnosticReport, error) {
	report, err := s.reports.GetLatestDiagnosis(ctx, userID)
	if err != nil {
		if errors.Is(err, postgresrepo.ErrReportNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return report, nil
}

func (s *AdvisorService) refund(ctx context.Context, userID string, amount int64) {
	if err := s.meter.Refund(ctx, userID, amount); err != nil {
		log.WithError(err).WithField("user", userID).Error("failed to refund charge after generation failure")
	}
}
