// Package ai wraps the Gemini SDK behind typed, schema-constrained
// generation calls for each paid flow. Failures are surfaced unchanged;
// there is no retry or backoff at this layer.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"funnel-copilot/internal/config"
	"funnel-copilot/internal/models"

	"google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("model returned an empty response")

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  cfg.Model,
	}, nil
}

// GenerateDiagnosis produces the four funnel-stage sections of a
// diagnostic report.
func (c *Client) GenerateDiagnosis(ctx context.Context, company models.CompanyProfile, metrics models.FunnelMetrics) ([]models.StageReport, error) {
	var out struct {
		Stages []models.StageReport `json:"stages"`
	}

	prompt := diagnosisPrompt(company, metrics)
	if err := c.generateJSON(ctx, systemPrompt, prompt, diagnosisSchema, &out); err != nil {
		return nil, err
	}
	if len(out.Stages) == 0 {
		return nil, ErrEmptyResponse
	}

	return out.Stages, nil
}

func (c *Client) GenerateActionPlan(ctx context.Context, objective string, report *models.DiagnosticReport) (*models.ActionPlan, error) {
	var plan models.ActionPlan

	prompt := planPrompt(objective, report)
	if err := c.generateJSON(ctx, systemPrompt, prompt, planSchema, &plan); err != nil {
		return nil, err
	}

	return &plan, nil
}

func (c *Client) GenerateCreatives(ctx context.Context, req models.CreativeRequest) ([]models.AdCreative, error) {
	var out struct {
		Creatives []models.AdCreative `json:"creatives"`
	}

	prompt := creativesPrompt(req)
	if err := c.generateJSON(ctx, systemPrompt, prompt, creativesSchema, &out); err != nil {
		return nil, err
	}
	if len(out.Creatives) == 0 {
		return nil, ErrEmptyResponse
	}

	return out.Creatives, nil
}

func (c *Client) GenerateWeeklyAnalysis(ctx context.Context, usage *models.WeeklyUsage, report *models.DiagnosticReport) (*models.WeeklyAnalysis, error) {
	var analysis models.WeeklyAnalysis

	prompt := weeklyPrompt(usage, report)
	if err := c.generateJSON(ctx, systemPrompt, prompt, weeklySchema, &analysis); err != nil {
		return nil, err
	}

	return &analysis, nil
}

func (c *Client) GenerateSectionDetail(ctx context.Context, section models.StageReport, question string) (*models.SectionDetail, error) {
	var detail models.SectionDetail

	prompt := detailPrompt(section, question)
	if err := c.generateJSON(ctx, systemPrompt, prompt, detailSchema, &detail); err != nil {
		return nil, err
	}
	detail.Stage = section.Stage

	return &detail, nil
}

// Chat runs one free-form conversational turn against the prior history.
func (c *Client) Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatSystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
	})
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	reply := resp.Text()
	if reply == "" {
		return "", ErrEmptyResponse
	}

	return reply, nil
}

func (c *Client) generateJSON(ctx context.Context, system, prompt string, schema *genai.Schema, out any) error {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr[float32](0.4),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return ErrEmptyResponse
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to decode model output: %w", err)
	}

	return nil
}
