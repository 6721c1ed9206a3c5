package ai

import (
	"fmt"
	"strings"

	"funnel-copilot/internal/models"
)

const systemPrompt = `You are a senior growth consultant for Brazilian small and
medium businesses. You analyze marketing and sales funnels across four stages:
topo (awareness), meio (consideration), fundo (conversion) and pos_conversao
(retention and expansion). Be concrete, reference the numbers you are given and
answer in Brazilian Portuguese.`

const chatSystemPrompt = `You are the growth copilot of a funnel diagnostic
platform. Answer marketing and sales questions in Brazilian Portuguese, keep
replies short and practical, and when relevant refer back to the user's funnel
stages (topo, meio, fundo, pos_conversao).`

func diagnosisPrompt(company models.CompanyProfile, metrics models.FunnelMetrics) string {
	return fmt.Sprintf(`Diagnose the marketing funnel of the company below.
Produce one section per stage (topo, meio, fundo, pos_conversao), each with a
status (green, amber or red), a short analysis and 2-4 suggested actions.

Company: %s (%s), team of %d, channels: %s.
Monthly metrics: %d visitors, %d leads, %d opportunities, %d sales,
average ticket R$ %.2f, ad budget R$ %.2f, %d repeat purchases.`,
		company.Name, company.Segment, company.TeamSize, strings.Join(company.Channels, ", "),
		metrics.MonthlyVisitors, metrics.Leads, metrics.Opportunities, metrics.Sales,
		metrics.AverageTicket, metrics.MonthlyAdBudget, metrics.RepeatPurchases)
}

func planPrompt(objective string, report *models.DiagnosticReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Build an advanced action plan for the objective: %q.
Return a summary and 4-6 milestones with priority and a due date in weeks.`, objective)

	if report != nil {
		sb.WriteString("\n\nLatest funnel diagnosis:\n")
		writeStages(&sb, report.Stages)
	}

	return sb.String()
}

func creativesPrompt(req models.CreativeRequest) string {
	tone := req.Tone
	if tone == "" {
		tone = "direto e persuasivo"
	}
	return fmt.Sprintf(`Write 3 ad creatives for %s targeting %q on %s.
Tone: %s. Each creative needs a headline, primary text, description and call to action.`,
		req.Product, req.Audience, req.Platform, tone)
}

func weeklyPrompt(usage *models.WeeklyUsage, report *models.DiagnosticReport) string {
	var sb strings.Builder
	sb.WriteString(`Write the weekly analysis for this account: a summary,
highlights, risks and one focus recommendation for next week.`)

	if usage != nil {
		fmt.Fprintf(&sb, "\n\nPlatform activity last week: %d operations, %d credits spent, %d credits added.",
			usage.Operations, usage.CreditsSpent, usage.CreditsAdded)
	}
	if report != nil {
		sb.WriteString("\n\nLatest funnel diagnosis:\n")
		writeStages(&sb, report.Stages)
	}

	return sb.String()
}

func detailPrompt(section models.StageReport, question string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Explain in depth the %q stage of this funnel diagnosis
(status %s): %s

Give a detailed explanation and a short list of market benchmarks.`,
		section.Stage, section.Status, section.Analysis)

	if question != "" {
		fmt.Fprintf(&sb, "\n\nThe user specifically asked: %q", question)
	}

	return sb.String()
}

func writeStages(sb *strings.Builder, stages []models.StageReport) {
	for _, s := range stages {
		fmt.Fprintf(sb, "- %s [%s]: %s\n", s.Stage, s.Status, s.Analysis)
	}
}
