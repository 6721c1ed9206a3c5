package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"funnel-copilot/internal/models"
	"funnel-copilot/internal/services"

	"github.com/go-playground/validator"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Wallet struct {
	walletService *services.WalletService
	validate      *validator.Validate
}

func NewWallet(mux *http.ServeMux, walletService *services.WalletService) *Wallet {
	h := &Wallet{
		walletService: walletService,
		validate:      validator.New(),
	}

	mux.HandleFunc("GET /api/v1/wallets/{userId}", h.getWallet)
	mux.HandleFunc("POST /api/v1/wallets/{userId}/credits", h.addCredits)
	mux.HandleFunc("GET /api/v1/wallets/{userId}/transactions", h.getTransactions)

	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return h
}

// @Summary Get wallet balance
// @Description Retrieves the current credit balance of a user's wallet
// @Tags wallets
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.WalletBalanceResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /wallets/{userId} [get]
func (h *Wallet) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	if err := h.validate.Var(userID, "required"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	balanceResponse, err := h.walletService.GetWalletBalance(ctx, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse)
}

// @Summary Add credits
// @Description Tops up a user's wallet, creating it on first use
// @Tags wallets
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param request body models.AddCreditsRequest true "Top-up request"
// @Success 200 {object} models.WalletBalanceResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /wallets/{userId}/credits [post]
func (h *Wallet) addCredits(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	if err := h.validate.Var(userID, "required"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req models.AddCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ctx := r.Context()
	balanceResponse, err := h.walletService.AddCredits(ctx, userID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse)
}

// @Summary Get transaction history
// @Description Lists the most recent credit transactions of a user
// @Tags wallets
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.TransactionHistoryResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /wallets/{userId}/transactions [get]
func (h *Wallet) getTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	if err := h.validate.Var(userID, "required"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	history, err := h.walletService.GetTransactions(ctx, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}
