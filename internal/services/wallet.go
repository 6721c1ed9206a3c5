package services

import (
	"context"
	"errors"
	"time"

	"funnel-copilot/internal/billing"
	"funnel-copilot/internal/models"
	"funnel-copilot/internal/repositories/postgresrepo"
	"funnel-copilot/internal/repositories/redisrepo"

	log "github.com/sirupsen/logrus"
)

const transactionHistoryLimit = 20

type WalletService struct {
	postgresRepo *postgresrepo.WalletRepository
	redisRepo    *redisrepo.WalletRepository
	meter        *billing.Meter
}

func NewWalletService(postgresRepo *postgresrepo.WalletRepository, redisRepo *redisrepo.WalletRepository, meter *billing.Meter) *WalletService {
	return &WalletService{
		postgresRepo: postgresRepo,
		redisRepo:    redisRepo,
		meter:        meter,
	}
}

func (s *WalletService) GetWalletBalance(ctx context.Context, userID string) (*models.WalletBalanceResponse, error) {
	// Try to get balance from Redis cache first
	balance, err := s.redisRepo.GetBalance(ctx, userID)
	if err == nil {
		return &models.WalletBalanceResponse{
			UserID:  userID,
			Balance: balance,
		}, nil
	}

	// If Redis error is not "balance not found", log it but continue to PostgreSQL
	if !errors.Is(err, redisrepo.ErrBalanceNotFound) {
		log.WithError(err).Warn("redis cache error (non-critical)")
	}

	// Get wallet data from PostgreSQL
	wallet, err := s.postgresRepo.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Update Redis cache asynchronously with fresh data
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.redisRepo.SetBalance(cacheCtx, userID, wallet.Balance); err != nil {
			log.WithError(err).WithField("user", userID).Warn("failed to update redis cache")
		}
	}()

	return &models.WalletBalanceResponse{
		UserID:  userID,
		Balance: wallet.Balance,
	}, nil
}

// AddCredits tops up the user's wallet and returns the new balance.
func (s *WalletService) AddCredits(ctx context.Context, userID string, amount int64) (*models.WalletBalanceResponse, error) {
	if err := s.meter.Credit(ctx, userID, models.OperationTopUp, amount); err != nil {
		return nil, err
	}

	wallet, err := s.postgresRepo.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.WalletBalanceResponse{
		UserID:  userID,
		Balance: wallet.Balance,
	}, nil
}

func (s *WalletService) GetTransactions(ctx context.Context, userID string) (*models.TransactionHistoryResponse, error) {
	transactions, err := s.postgresRepo.GetTransactions(ctx, userID, transactionHistoryLimit)
	if err != nil {
		return nil, err
	}

	response := &models.TransactionHistoryResponse{
		UserID:       userID,
		Transactions: make([]models.CreditTransactionTO, 0, len(transactions)),
	}
	for _, tx := range transactions {
		response.Transactions = append(response.Transactions, models.CreditTransactionTO{
			ID:        tx.ID,
			Operation: tx.Operation,
			Direction: tx.Direction,
			Amount:    tx.Amount,
			Status:    tx.Status,
			CreatedAt: tx.CreatedAt,
			SettledAt: tx.SettledAt,
		})
	}

	return response, nil
}
