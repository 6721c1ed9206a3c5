package models

import "time"

// Funnel stage identifiers, in pipeline order.
const (
	StageTopo         = "topo"
	StageMeio         = "meio"
	StageFundo        = "fundo"
	StagePosConversao = "pos_conversao"
)

// Stage health statuses
const (
	StatusGreen = "green"
	StatusAmber = "amber"
	StatusRed   = "red"
)

type CompanyProfile struct {
	Name     string   `json:"name" validate:"required"`
	Segment  string   `json:"segment" validate:"required"`
	Channels []string `json:"channels"`
	TeamSize int      `json:"teamSize" validate:"gte=0"`
}

type FunnelMetrics struct {
	MonthlyVisitors int64   `json:"monthlyVisitors" validate:"gte=0"`
	Leads           int64   `json:"leads" validate:"gte=0"`
	Opportunities   int64   `json:"opportunities" validate:"gte=0"`
	Sales           int64   `json:"sales" validate:"gte=0"`
	AverageTicket   float64 `json:"averageTicket" validate:"gte=0"`
	MonthlyAdBudget float64 `json:"monthlyAdBudget" validate:"gte=0"`
	RepeatPurchases int64   `json:"repeatPurchases" validate:"gte=0"`
}

type DiagnosisRequest struct {
	UserID  string         `json:"userId" validate:"required"`
	Company CompanyProfile `json:"company" validate:"required"`
	Metrics FunnelMetrics  `json:"metrics" validate:"required"`
}

// StageReport is one funnel-stage section of a diagnostic report.
type StageReport struct {
	Stage    string   `json:"stage"`
	Status   string   `json:"status"`
	Analysis string   `json:"analysis"`
	Actions  []string `json:"actions"`
}

type DiagnosticReport struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Score     int           `json:"score"`
	Stages    []StageReport `json:"stages"`
	Charged   bool          `json:"charged"`
	CreatedAt time.Time     `json:"createdAt"`
}

type PlanRequest struct {
	UserID    string `json:"userId" validate:"required"`
	Objective string `json:"objective" validate:"required"`
}

type PlanMilestone struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueWeeks    int    `json:"dueWeeks"`
}

type ActionPlan struct {
	Summary    string          `json:"summary"`
	Milestones []PlanMilestone `json:"milestones"`
}

type ChatRequest struct {
	UserID  string        `json:"userId" validate:"required"`
	Message string        `json:"message" validate:"required"`
	History []ChatMessage `json:"history"`
}

type ChatMessage struct {
	Role string `json:"role" validate:"omitempty,oneof=user model"`
	Text string `json:"text"`
}

type ChatResponse struct {
	Reply   string `json:"reply"`
	Charged bool   `json:"charged"`
}

type CreativeRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Product  string `json:"product" validate:"required"`
	Audience string `json:"audience" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=facebook instagram google tiktok"`
	Tone     string `json:"tone"`
}

type AdCreative struct {
	Headline     string `json:"headline"`
	PrimaryText  string `json:"primaryText"`
	Description  string `json:"description"`
	CallToAction string `json:"callToAction"`
}

type CreativeResponse struct {
	Creatives []AdCreative `json:"creatives"`
}

type WeeklyAnalysisRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type WeeklyAnalysis struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Risks      []string `json:"risks"`
	Focus      string   `json:"focus"`
}

type SectionDetailRequest struct {
	Question string `json:"question"`
}

type SectionDetail struct {
	Stage       string   `json:"stage"`
	Explanation string   `json:"explanation"`
	Benchmarks  []string `json:"benchmarks"`
}
