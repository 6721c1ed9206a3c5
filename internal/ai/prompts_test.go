package ai

import (
	"testing"

	"funnel-copilot/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosisPrompt_IncludesCompanyAndMetrics(t *testing.T) {
	prompt := diagnosisPrompt(
		models.CompanyProfile{
			Name:     "Loja Aurora",
			Segment:  "e-commerce",
			TeamSize: 4,
			Channels: []string{"instagram", "google"},
		},
		models.FunnelMetrics{
			MonthlyVisitors: 12000,
			Leads:           340,
			Sales:           51,
			AverageTicket:   189.90,
		},
	)

	assert.Contains(t, prompt, "Loja Aurora")
	assert.Contains(t, prompt, "e-commerce")
	assert.Contains(t, prompt, "instagram, google")
	assert.Contains(t, prompt, "12000 visitors")
	assert.Contains(t, prompt, "340 leads")
	assert.Contains(t, prompt, "R$ 189.90")
}

func TestPlanPrompt_OmitsDiagnosisWhenNoneExists(t *testing.T) {
	prompt := planPrompt("dobrar as vendas", nil)

	assert.Contains(t, prompt, "dobrar as vendas")
	assert.NotContains(t, prompt, "Latest funnel diagnosis")
}

func TestPlanPrompt_IncludesStagesWhenReportExists(t *testing.T) {
	report := &models.DiagnosticReport{
		Stages: []models.StageReport{
			{Stage: models.StageTopo, Status: models.StatusRed, Analysis: "pouco tráfego"},
			{Stage: models.StageFundo, Status: models.StatusGreen, Analysis: "conversão saudável"},
		},
	}

	prompt := planPrompt("reduzir CAC", report)

	assert.Contains(t, prompt, "Latest funnel diagnosis")
	assert.Contains(t, prompt, "topo [red]: pouco tráfego")
	assert.Contains(t, prompt, "fundo [green]: conversão saudável")
}

func TestCreativesPrompt_DefaultsTone(t *testing.T) {
	prompt := creativesPrompt(models.CreativeRequest{
		Product:  "curso de tráfego pago",
		Audience: "donos de pequenos negócios",
		Platform: "instagram",
	})

	assert.Contains(t, prompt, "direto e persuasivo")
}

func TestDetailPrompt_AppendsQuestion(t *testing.T) {
	section := models.StageReport{Stage: models.StageMeio, Status: models.StatusAmber, Analysis: "nutrição fraca"}

	withQuestion := detailPrompt(section, "como melhorar o e-mail marketing?")
	assert.Contains(t, withQuestion, "como melhorar o e-mail marketing?")

	withoutQuestion := detailPrompt(section, "")
	assert.NotContains(t, withoutQuestion, "specifically asked")
}

func TestSchemas_ConstrainStageAndStatus(t *testing.T) {
	assert.ElementsMatch(t, []string{"topo", "meio", "fundo", "pos_conversao"}, stageSchema.Properties["stage"].Enum)
	assert.ElementsMatch(t, []string{"green", "amber", "red"}, stageSchema.Properties["status"].Enum)
	assert.Equal(t, []string{"stages"}, diagnosisSchema.Required)
	assert.Contains(t, planSchema.Required, "milestones")
	assert.Contains(t, creativesSchema.Required, "creatives")
	assert.Contains(t, weeklySchema.Required, "focus")
	assert.Contains(t, detailSchema.Required, "benchmarks")
}
