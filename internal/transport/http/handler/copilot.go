package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"funnel-copilot/internal/models"
	"funnel-copilot/internal/services"

	"github.com/go-playground/validator"
)

type Copilot struct {
	copilotService *services.CopilotService
	advisorService *services.AdvisorService
	validate       *validator.Validate
}

func NewCopilot(mux *http.ServeMux, copilotService *services.CopilotService, advisorService *services.AdvisorService) *Copilot {
	h := &Copilot{
		copilotService: copilotService,
		advisorService: advisorService,
		validate:       validator.New(),
	}

	mux.HandleFunc("POST /api/v1/chat", h.chat)
	mux.HandleFunc("POST /api/v1/plans", h.generatePlan)
	mux.HandleFunc("POST /api/v1/creatives", h.generateCreatives)
	mux.HandleFunc("POST /api/v1/analyses/weekly", h.weeklyAnalysis)

	return h
}

// @Summary Chat with the growth copilot
// @Description Runs one conversational turn. Costs 1 credit; with an empty wallet the copilot answers with a scripted out-of-credits message instead of failing.
// @Tags copilot
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "Message and prior history"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /chat [post]
func (h *Copilot) chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := r.Context()
	response, err := h.copilotService.Chat(ctx, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Generate an advanced action plan
// @Description Builds a milestone plan for an objective, enriched with the latest diagnosis when one exists. Costs 100 credits.
// @Tags copilot
// @Accept json
// @Produce json
// @Param request body models.PlanRequest true "Plan request"
// @Success 200 {object} models.ActionPlan
// @Failure 400 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /plans [post]
func (h *Copilot) generatePlan(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := r.Context()
	plan, err := h.advisorService.GeneratePlan(ctx, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// @Summary Generate ad creatives
// @Description Writes three platform-specific ad creatives. Costs 50 credits.
// @Tags copilot
// @Accept json
// @Produce json
// @Param request body models.CreativeRequest true "Creative brief"
// @Success 200 {object} models.CreativeResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /creatives [post]
func (h *Copilot) generateCreatives(w http.ResponseWriter, r *http.Request) {
	var req models.CreativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := r.Context()
	response, err := h.advisorService.GenerateCreatives(ctx, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Generate the weekly analysis
// @Description Summarizes last week's account activity with highlights, risks and a focus recommendation. Costs 100 credits.
// @Tags copilot
// @Accept json
// @Produce json
// @Param request body models.WeeklyAnalysisRequest true "Analysis request"
// @Success 200 {object} models.WeeklyAnalysis
// @Failure 400 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /analyses/weekly [post]
func (h *Copilot) weeklyAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.WeeklyAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := r.Context()
	analysis, err := h.advisorService.WeeklyAnalysis(ctx, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}
