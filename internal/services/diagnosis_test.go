package services

import (
	"context"
	"errors"
	"testing"

	"funnel-copilot/internal/billing"
	"funnel-copilot/internal/models"
	"funnel-copilot/internal/repositories/postgresrepo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chargeCall struct {
	userID    string
	operation string
	amount    int64
}

type stubMeter struct {
	chargeErr error
	charges   []chargeCall
	refunds   []int64
}

func (m *stubMeter) Charge(ctx context.Context, userID, operation string, amount int64) error {
	if m.chargeErr != nil {
		return m.chargeErr
	}
	m.charges = append(m.charges, chargeCall{userID, operation, amount})
	return nil
}

func (m *stubMeter) Refund(ctx context.Context, userID string, amount int64) error {
	m.refunds = append(m.refunds, amount)
	return nil
}

type stubReports struct {
	hasPrior  bool
	hasErr    error
	latest    *models.DiagnosticReport
	latestErr error
	saved     []*models.DiagnosticReport
	saveErr   error
}

func (r *stubReports) HasDiagnosis(ctx context.Context, userID string) (bool, error) {
	return r.hasPrior, r.hasErr
}

func (r *stubReports) GetLatestDiagnosis(ctx context.Context, userID string) (*models.DiagnosticReport, error) {
	return r.latest, r.latestErr
}

func (r *stubReports) SaveDiagnosis(ctx context.Context, report *models.DiagnosticReport) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, report)
	return nil
}

type stubDiagGen struct {
	stages    []models.StageReport
	genErr    error
	genCalls  int
	detail    *models.SectionDetail
	detailErr error
}

func (g *stubDiagGen) GenerateDiagnosis(ctx context.Context, company models.CompanyProfile, metrics models.FunnelMetrics) ([]models.StageReport, error) {
	g.genCalls++
	return g.stages, g.genErr
}

func (g *stubDiagGen) GenerateSectionDetail(ctx context.Context, section models.StageReport, question string) (*models.SectionDetail, error) {
	return g.detail, g.detailErr
}

func fourStages() []models.StageReport {
	return []models.StageReport{
		{Stage: models.StageTopo, Status: models.StatusGreen, Analysis: "ok", Actions: []string{"a"}},
		{Stage: models.StageMeio, Status: models.StatusAmber, Analysis: "meh", Actions: []string{"b"}},
		{Stage: models.StageFundo, Status: models.StatusRed, Analysis: "bad", Actions: []string{"c"}},
		{Stage: models.StagePosConversao, Status: models.StatusRed, Analysis: "bad", Actions: []string{"d"}},
	}
}

func diagnosisRequest() models.DiagnosisRequest {
	return models.DiagnosisRequest{
		UserID:  "u1",
		Company: models.CompanyProfile{Name: "Acme", Segment: "saas"},
		Metrics: models.FunnelMetrics{MonthlyVisitors: 1000, Leads: 100, Sales: 5},
	}
}

func TestDiagnosisService_RunDiagnosis(t *testing.T) {
	ctx := context.Background()

	t.Run("first diagnosis is free and decided server-side", func(t *testing.T) {
		meter := &stubMeter{}
		reports := &stubReports{hasPrior: false}
		gen := &stubDiagGen{stages: fourStages()}
		s := NewDiagnosisService(meter, reports, gen)

		report, err := s.RunDiagnosis(ctx, diagnosisRequest())

		require.NoError(t, err)
		assert.Empty(t, meter.charges)
		assert.False(t, report.Charged)
		assert.Equal(t, 1, gen.genCalls)
		require.Len(t, reports.saved, 1)
	})

	t.Run("later diagnoses are charged before generation", func(t *testing.T) {
		meter := &stubMeter{}
		reports := &stubReports{hasPrior: true}
		gen := &stubDiagGen{stages: fourStages()}
		s := NewDiagnosisService(meter, reports, gen)

		report, err := s.RunDiagnosis(ctx, diagnosisRequest())

		require.NoError(t, err)
		require.Len(t, meter.charges, 1)
		assert.Equal(t, chargeCall{"u1", models.OperationDiagnosis, billing.CostDiagnosis}, meter.charges[0])
		assert.True(t, report.Charged)
	})

	t.Run("failed charge prevents the expensive call", func(t *testing.T) {
		meter := &stubMeter{chargeErr: billing.ErrInsufficientCredits}
		reports := &stubReports{hasPrior: true}
		gen := &stubDiagGen{stages: fourStages()}
		s := NewDiagnosisService(meter, reports, gen)

		_, err := s.RunDiagnosis(ctx, diagnosisRequest())

		assert.ErrorIs(t, err, billing.ErrInsufficientCredits)
		assert.Equal(t, 0, gen.genCalls)
	})

	t.Run("generation failure refunds the charge", func(t *testing.T) {
		genErr := errors.New("provider unavailable")
		meter := &stubMeter{}
		reports := &stubReports{hasPrior: true}
		gen := &stubDiagGen{genErr: genErr}
		s := NewDiagnosisService(meter, reports, gen)

		_, err := s.RunDiagnosis(ctx, diagnosisRequest())

		assert.ErrorIs(t, err, genErr)
		assert.Equal(t, []int64{billing.CostDiagnosis}, meter.refunds)
	})

	t.Run("free diagnosis failure refunds nothing", func(t *testing.T) {
		meter := &stubMeter{}
		reports := &stubReports{hasPrior: false}
		gen := &stubDiagGen{genErr: errors.New("provider unavailable")}
		s := NewDiagnosisService(meter, reports, gen)

		_, err := s.RunDiagnosis(ctx, diagnosisRequest())

		require.Error(t, err)
		assert.Empty(t, meter.refunds)
	})

	t.Run("report survives a persistence failure", func(t *testing.T) {
		meter := &stubMeter{}
		reports := &stubReports{hasPrior: true, saveErr: errors.New("db down")}
		gen := &stubDiagGen{stages: fourStages()}
		s := NewDiagnosisService(meter, reports, gen)

		report, err := s.RunDiagnosis(ctx, diagnosisRequest())

		require.NoError(t, err)
		assert.Len(t, report.Stages, 4)
	})
}

func TestDiagnosisService_SectionDetail(t *testing.T) {
	ctx := context.Background()

	latest := &models.DiagnosticReport{UserID: "u1", Stages: fourStages()}

	t.Run("charges five credits and returns the detail", func(t *testing.T) {
		meter := &stubMeter{}
		gen := &stubDiagGen{detail: &models.SectionDetail{Stage: models.StageTopo, Explanation: "deep dive"}}
		s := NewDiagnosisService(meter, &stubReports{latest: latest}, gen)

		detail, err := s.SectionDetail(ctx, "u1", models.StageTopo, "")

		require.NoError(t, err)
		assert.Equal(t, "deep dive", detail.Explanation)
		require.Len(t, meter.charges, 1)
		assert.Equal(t, chargeCall{"u1", models.OperationSectionDetail, billing.CostSectionDetail}, meter.charges[0])
	})

	t.Run("missing report surfaces unchanged", func(t *testing.T) {
		meter := &stubMeter{}
		s := NewDiagnosisService(meter, &stubReports{latestErr: postgresrepo.ErrReportNotFound}, &stubDiagGen{})

		_, err := s.SectionDetail(ctx, "u1", models.StageTopo, "")

		assert.ErrorIs(t, err, postgresrepo.ErrReportNotFound)
		assert.Empty(t, meter.charges)
	})

	t.Run("unknown stage is rejected before charging", func(t *testing.T) {
		meter := &stubMeter{}
		s := NewDiagnosisService(meter, &stubReports{latest: latest}, &stubDiagGen{})

		_, err := s.SectionDetail(ctx, "u1", "pipeline", "")

		require.Error(t, err)
		assert.Empty(t, meter.charges)
	})

	t.Run("generation failure refunds the charge", func(t *testing.T) {
		meter := &stubMeter{}
		gen := &stubDiagGen{detailErr: errors.New("provider unavailable")}
		s := NewDiagnosisService(meter, &stubReports{latest: latest}, gen)

		_, err := s.SectionDetail(ctx, "u1", models.StageFundo, "why red?")

		require.Error(t, err)
		assert.Equal(t, []int64{billing.CostSectionDetail}, meter.refunds)
	})
}

func TestScoreStages(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     int
	}{
		{"all green", []string{"green", "green", "green", "green"}, 100},
		{"all red", []string{"red", "red", "red", "red"}, 20},
		{"mixed funnel", []string{"green", "amber", "red", "red"}, 50},
		{"single amber", []string{"amber"}, 60},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := make([]models.StageReport, len(tt.statuses))
			for i, status := range tt.statuses {
				stages[i] = models.StageReport{Status: status}
			}
			assert.Equal(t, tt.want, ScoreStages(stages))
		})
	}
}
