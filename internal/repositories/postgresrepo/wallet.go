package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"funnel-copilot/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientCredits is the typed variant of the old
	// "Insufficient credits" string contract; callers branch with
	// errors.Is instead of parsing messages.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetWallet get a wallet by user ID
func (r *WalletRepository) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet

	query := `SELECT user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet from postgres: %w", err)
	}

	return &wallet, nil
}

// DebitCredits atomically verifies the balance and decrements it in a
// single conditional UPDATE. The check and the decrement must never be
// split into a read followed by a write: two concurrent debits would
// both pass the read and drive the balance negative.
//
// Amounts <= 0 are silent no-ops. A missing wallet is created with a
// zero balance, so the debit then fails with ErrInsufficientCredits.
func (r *WalletRepository) DebitCredits(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return nil
	}

	query := `
		UPDATE wallets
		SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
	`

	result, err := r.db.ExecContext(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to debit credits: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		if err := r.ensureWallet(ctx, userID); err != nil {
			return err
		}
		return ErrInsufficientCredits
	}

	return nil
}

// AddCredits atomically increments the balance, creating the wallet on
// first use. Amounts <= 0 are silent no-ops.
func (r *WalletRepository) AddCredits(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return nil
	}

	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to add credits: %w", err)
	}

	return nil
}

// CreateLedgerEntry records a wallet mutation with the status PENDING.
// The settlement worker later flips it to SETTLED.
func (r *WalletRepository) CreateLedgerEntry(ctx context.Context, userID, operation, direction string, amount int64) (string, error) {
	entryID := uuid.New().String()

	query := `
		INSERT INTO credit_transactions
		(id, user_id, operation, direction, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'PENDING', NOW())
	`

	_, err := r.db.ExecContext(ctx, query, entryID, userID, operation, direction, amount)
	if err != nil {
		return "", fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return entryID, nil
}

// GetTransactions returns the most recent ledger entries for a user.
func (r *WalletRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	query := `
		SELECT id, user_id, operation, direction, amount, status, created_at, settled_at, error
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var transactions []models.CreditTransaction
	err := r.db.SelectContext(ctx, &transactions, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return transactions, nil
}

func (r *WalletRepository) ensureWallet(ctx context.Context, userID string) error {
	query := `INSERT INTO wallets (user_id, balance) VALUES ($1, 0) ON CONFLICT (user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}
