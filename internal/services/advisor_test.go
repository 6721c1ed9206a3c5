package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"funnel-copilot/internal/billing"
	"funnel-copilot/internal/models"
	"funnel-copilot/internal/repositories/postgresrepo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdvisorGen struct {
	plan         *models.ActionPlan
	planErr      error
	planCalls    int
	creatives    []models.AdCreative
	creativesErr error
	analysis     *models.WeeklyAnalysis
	analysisErr  error
	gotUsage     *models.WeeklyUsage
}

func (g *stubAdvisorGen) GenerateActionPlan(ctx context.Context, objective string, report *models.DiagnosticReport) (*models.ActionPlan, error) {
	g.planCalls++
	return g.plan, g.planErr
}

func (g *stubAdvisorGen) GenerateCreatives(ctx context.Context, req models.CreativeRequest) ([]models.AdCreative, error) {
	return g.creatives, g.creativesErr
}

func (g *stubAdvisorGen) GenerateWeeklyAnalysis(ctx context.Context, usage *models.WeeklyUsage, report *models.DiagnosticReport) (*models.WeeklyAnalysis, error) {
	g.gotUsage = usage
	return g.analysis, g.analysisErr
}

type fakeUsageReader struct {
	usage *models.WeeklyUsage
	err   error
}

func (u *fakeUsageReader) GetWeeklyUsage(ctx context.Context, userID string, weekStart time.Time) (*models.WeeklyUsage, error) {
	return u.usage, u.err
}

func TestAdvisorService_GeneratePlan(t *testing.T) {
	ctx := context.Background()
	req := models.PlanRequest{UserID: "u1", Objective: "dobrar as vendas"}

	t.Run("charges before generating", func(t *testing.T) {
		meter := &stubMeter{}
		gen := &stubAdvisorGen{plan: &models.ActionPlan{Summary: "plano"}}
		s := NewAdvisorService(meter, &stubReports{}, nil, gen)

		plan, err := s.GeneratePlan(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "plano", plan.Summary)
		require.Len(t, meter.charges, 1)
		assert.Equal(t, chargeCall{"u1", models.OperationAdvancedPlan, billing.CostAdvancedPlan}, meter.charges[0])
		assert.Empty(t, meter.refunds)
	})

	t.Run("failed charge prevents the expensive call", func(t *testing.T) {
		meter := &stubMeter{chargeErr: billing.ErrInsufficientCredits}
		gen := &stubAdvisorGen{plan: &models.ActionPlan{}}
		s := NewAdvisorService(meter, &stubReports{}, nil, gen)

		_, err := s.GeneratePlan(ctx, req)

		assert.ErrorIs(t, err, billing.ErrInsufficientCredits)
		assert.Equal(t, 0, gen.planCalls)
	})

	t.Run("generation failure refunds the charge", func(t *testing.T) {
		genErr := errors.New("provider unavailable")
		meter := &stubMeter{}
		s := NewAdvisorService(meter, &stubReports{}, nil, &stubAdvisorGen{planErr: genErr})

		_, err := s.GeneratePlan(ctx, req)

		assert.ErrorIs(t, err, genErr)
		assert.Equal(t, []int64{billing.CostAdvancedPlan}, meter.refunds)
	})

	t.Run("missing latest report is tolerated", func(t *testing.T) {
		meter := &stubMeter{}
		gen := &stubAdvisorGen{plan: &models.ActionPlan{}}
		s := NewAdvisorService(meter, &stubReports{latestErr: postgresrepo.ErrReportNotFound}, nil, gen)

		_, err := s.GeneratePlan(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, 1, gen.planCalls)
	})
}

func TestAdvisorService_GenerateCreatives(t *testing.T) {
	ctx := context.Background()
	req := models.CreativeRequest{UserID: "u1", Product: "curso", Audience: "lojistas", Platform: "instagram"}

	t.Run("charges fifty credits", func(t *testing.T) {
		meter := &stubMeter{}
		gen := &stubAdvisorGen{creatives: []models.AdCreative{{Headline: "h1"}, {Headline: "h2"}, {Headline: "h3"}}}
		s := NewAdvisorService(meter, &stubReports{}, nil, gen)

		resp, err := s.GenerateCreatives(ctx, req)

		require.NoError(t, err)
		assert.Len(t, resp.Creatives, 3)
		require.Len(t, meter.charges, 1)
		assert.Equal(t, chargeCall{"u1", models.OperationAdCreative, billing.CostAdCreative}, meter.charges[0])
	})

	t.Run("generation failure refunds the charge", func(t *testing.T) {
		meter := &stubMeter{}
		s := NewAdvisorService(meter, &stubReports{}, nil, &stubAdvisorGen{creativesErr: errors.New("provider unavailable")})

		_, err := s.GenerateCreatives(ctx, req)

		require.Error(t, err)
		assert.Equal(t, []int64{billing.CostAdCreative}, meter.refunds)
	})
}

func TestAdvisorService_WeeklyAnalysis(t *testing.T) {
	ctx := context.Background()
	req := models.WeeklyAnalysisRequest{UserID: "u1"}

	t.Run("passes last week's usage into generation", func(t *testing.T) {
		meter := &stubMeter{}
		usage := &models.WeeklyUsage{UserID: "u1", CreditsSpent: 650, Operations: 4}
		gen := &stubAdvisorGen{analysis: &models.WeeklyAnalysis{Summary: "semana boa"}}
		s := NewAdvisorService(meter, &stubReports{}, &fakeUsageReader{usage: usage}, gen)

		analysis, err := s.WeeklyAnalysis(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "semana boa", analysis.Summary)
		assert.Equal(t, usage, gen.gotUsage)
		require.Len(t, meter.charges, 1)
		assert.Equal(t, chargeCall{"u1", models.OperationWeeklyAnalysis, billing.CostWeeklyAnalysis}, meter.charges[0])
	})

	t.Run("missing weekly usage is tolerated", func(t *testing.T) {
		meter := &stubMeter{}
		gen := &stubAdvisorGen{analysis: &models.WeeklyAnalysis{}}
		s := NewAdvisorService(meter, &stubReports{}, &fakeUsageReader{err: postgresrepo.ErrUsageNotFound}, gen)

		_, err := s.WeeklyAnalysis(ctx, req)

		require.NoError(t, err)
		assert.Nil(t, gen.gotUsage)
		require.Len(t, meter.charges, 1)
	})

	t.Run("other usage lookup errors abort before charging", func(t *testing.T) {
		meter := &stubMeter{}
		lookupErr := errors.New("db down")
		s := NewAdvisorService(meter, &stubReports{}, &fakeUsageReader{err: lookupErr}, &stubAdvisorGen{})

		_, err := s.WeeklyAnalysis(ctx, req)

		assert.ErrorIs(t, err, lookupErr)
		assert.Empty(t, meter.charges)
	})

	t.Run("generation failure refunds the charge", func(t *testing.T) {
		meter := &stubMeter{}
		s := NewAdvisorService(meter, &stubReports{}, &fakeUsageReader{}, &stubAdvisorGen{analysisErr: errors.New("provider unavailable")})

		_, err := s.WeeklyAnalysis(ctx, req)

		require.Error(t, err)
		assert.Equal(t, []int64{billing.CostWeeklyAnalysis}, meter.refunds)
	})
}
