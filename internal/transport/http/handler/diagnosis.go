package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"funnel-copilot/internal/models"
	"funnel-copilot/internal/services"

	"github.com/go-playground/validator"
)

type Diagnosis struct {
	diagnosisService *services.DiagnosisService
	validate         *validator.Validate
}

func NewDiagnosis(mux *http.ServeMux, diagnosisService *services.DiagnosisService) *Diagnosis {
	h := &Diagnosis{
		diagnosisService: diagnosisService,
		validate:         validator.New(),
	}

	mux.HandleFunc("POST /api/v1/diagnoses", h.runDiagnosis)
	mux.HandleFunc("GET /api/v1/diagnoses/{userId}/latest", h.latestDiagnosis)
	mux.HandleFunc("POST /api/v1/diagnoses/{userId}/sections/{stage}/detail", h.sectionDetail)

	return h
}

// @Summary Run a funnel diagnosis
// @Description Generates a four-stage funnel diagnosis. Costs 500 credits; the first diagnosis of a user is free.
// @Tags diagnoses
// @Accept json
// @Produce json
// @Param request body models.DiagnosisRequest true "Company profile and funnel metrics"
// @Success 201 {object} models.DiagnosticReport
// @Failure 400 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /diagnoses [post]
func (h *Diagnosis) runDiagnosis(w http.ResponseWriter, r *http.Request) {
	var req models.DiagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := r.Context()
	report, err := h.diagnosisService.RunDiagnosis(ctx, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

// @Summary Get the latest diagnosis
// @Description Returns the user's most recent diagnostic report
// @Tags diagnoses
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.DiagnosticReport
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /diagnoses/{userId}/latest [get]
func (h *Diagnosis) latestDiagnosis(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	if err := h.validate.Var(userID, "required"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	report, err := h.diagnosisService.LatestDiagnosis(ctx, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// @Summary Explain one report section
// @Description Generates an on-demand deep dive into one funnel stage of the latest report. Costs 5 credits.
// @Tags diagnoses
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param stage path string true "Funnel stage" Enums(topo, meio, fundo, pos_conversao)
// @Param request body models.SectionDetailRequest false "Optional focusing question"
// @Success 200 {object} models.SectionDetail
// @Failure 400 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /diagnoses/{userId}/sections/{stage}/detail [post]
func (h *Diagnosis) sectionDetail(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	stage := r.PathValue("stage")

	if err := h.validate.Var(userID, "required"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if err := h.validate.Var(stage, "required,oneof=topo meio fundo pos_conversao"); err != nil {
		writeError(w, http.StatusBadRequest, "Unknown funnel stage")
		return
	}

	// The question is optional; an empty body is fine, malformed JSON is not.
	var req models.SectionDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	ctx := r.Context()
	detail, err := h.diagnosisService.SectionDetail(ctx, userID, stage, req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
