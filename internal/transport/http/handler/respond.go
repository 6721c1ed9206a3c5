package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"funnel-copilot/internal/billing"
	"funnel-copilot/internal/repositories/postgresrepo"
)

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(statusCode),
		"message": message,
		"code":    statusCode,
	}

	writeJSON(w, statusCode, errorResponse)
}

// writeServiceError maps service failures to HTTP statuses. The
// insufficient-credits message keeps the "Insufficient credits" wording
// older clients still match on.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrInsufficientCredits):
		writeError(w, http.StatusPaymentRequired, "Insufficient credits")
	case errors.Is(err, postgresrepo.ErrWalletNotFound):
		writeError(w, http.StatusNotFound, "Wallet not found")
	case errors.Is(err, postgresrepo.ErrReportNotFound):
		writeError(w, http.StatusNotFound, "Diagnosis report not found")
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Request failed: %v", err))
	}
}
