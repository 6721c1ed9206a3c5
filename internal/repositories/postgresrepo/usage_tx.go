package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"funnel-copilot/internal/models"

	"github.com/jmoiron/sqlx"
)

var ErrUsageNotFound = errors.New("weekly usage not found")

type UsageRepo struct {
	db *sqlx.DB
}

func NewUsageRepo(db *sqlx.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// BeginTx starts a transaction and returns a transactional repository
func (r *UsageRepo) BeginTx(ctx context.Context) (*TxUsageRepo, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return NewTxUsageRepo(tx), nil
}

// GetWeeklyUsage returns a user's summary row for the given week.
func (r *UsageRepo) GetWeeklyUsage(ctx context.Context, userID string, weekStart time.Time) (*models.WeeklyUsage, error) {
	var usage models.WeeklyUsage

	query := `
		SELECT user_id, week_start, credits_spent, credits_added, operations, updated_at
		FROM weekly_usage
		WHERE user_id = $1 AND week_start = $2
	`

	err := r.db.GetContext(ctx, &usage, query, userID, weekStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUsageNotFound
		}
		return nil, fmt.Errorf("failed to get weekly usage: %w", err)
	}

	return &usage, nil
}

// RollupWeek recomputes a week's usage summaries from the settled
// ledger. Used by the cron repair job; safe to run repeatedly.
func (r *UsageRepo) RollupWeek(ctx context.Context, weekStart time.Time) error {
	query := `
		INSERT INTO weekly_usage (user_id, week_start, credits_spent, credits_added, operations, updated_at)
		SELECT
			user_id,
			$1::date,
			COALESCE(SUM(amount) FILTER (WHERE direction = 'DEBIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'CREDIT'), 0),
			COUNT(*),
			NOW()
		FROM credit_transactions
		WHERE status = 'SETTLED'
		  AND created_at >= $1 AND created_at < $1::date + INTERVAL '7 days'
		GROUP BY user_id
		ON CONFLICT (user_id, week_start)
		DO UPDATE SET
			credits_spent = EXCLUDED.credits_spent,
			credits_added = EXCLUDED.credits_added,
			operations = EXCLUDED.operations,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, weekStart); err != nil {
		return fmt.Errorf("failed to roll up weekly usage: %w", err)
	}

	return nil
}

type TxUsageRepo struct {
	tx *sqlx.Tx
}

func NewTxUsageRepo(tx *sqlx.Tx) *TxUsageRepo {
	return &TxUsageRepo{tx: tx}
}

func (r *TxUsageRepo) Commit() error {
	return r.tx.Commit()
}

func (r *TxUsageRepo) Rollback() error {
	return r.tx.Rollback()
}

// LockWeeklyUsage upserts the user's summary row for the week and locks
// it for the rest of the transaction.
func (r *TxUsageRepo) LockWeeklyUsage(ctx context.Context, userID string, weekStart time.Time) (*models.WeeklyUsage, error) {
	insert := `
		INSERT INTO weekly_usage (user_id, week_start, credits_spent, credits_added, operations)
		VALUES ($1, $2, 0, 0, 0)
		ON CONFLICT (user_id, week_start) DO NOTHING
	`
	if _, err := r.tx.ExecContext(ctx, insert, userID, weekStart); err != nil {
		return nil, fmt.Errorf("failed to ensure weekly usage row: %w", err)
	}

	var usage models.WeeklyUsage
	query := `
		SELECT user_id, week_start, credits_spent, credits_added, operations, updated_at
		FROM weekly_usage
		WHERE user_id = $1 AND week_start = $2
		FOR UPDATE
	`
	if err := r.tx.GetContext(ctx, &usage, query, userID, weekStart); err != nil {
		return nil, fmt.Errorf("failed to lock weekly usage: %w", err)
	}

	return &usage, nil
}

func (r *TxUsageRepo) UpdateWeeklyUsage(ctx context.Context, usage *models.WeeklyUsage) error {
	query := `
		UPDATE weekly_usage
		SET credits_spent = $1, credits_added = $2, operations = $3, updated_at = NOW()
		WHERE user_id = $4 AND week_start = $5
	`
	result, err := r.tx.ExecContext(ctx, query,
		usage.CreditsSpent, usage.CreditsAdded, usage.Operations, usage.UserID, usage.WeekStart)
	if err != nil {
		return fmt.Errorf("failed to update weekly usage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("weekly usage row not found: %s", usage.UserID)
	}

	return nil
}

func (r *TxUsageRepo) GetEntriesByIDs(ctx context.Context, userID string, entryIDs []string) ([]models.CreditTransaction, error) {
	if len(entryIDs) == 0 {
		return []models.CreditTransaction{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, user_id, operation, direction, amount, status, created_at, settled_at, error
		FROM credit_transactions
		WHERE user_id = ? AND id IN (?)
		ORDER BY created_at ASC
	`, userID, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	query = r.tx.Rebind(query)
	var entries []models.CreditTransaction
	err = r.tx.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	return entries, nil
}

func (r *TxUsageRepo) BulkUpdateEntries(ctx context.Context, entries []models.CreditTransaction) error {
	if len(entries) == 0 {
		return nil
	}

	// Prepare a batch request
	batchSize := 100 // Batch size to prevent too large requests
	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}

		batch := entries[i:end]
		if err := r.updateBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to update batch [%d:%d]: %w", i, end, err)
		}
	}

	return nil
}

func (r *TxUsageRepo) updateBatch(ctx context.Context, entries []models.CreditTransaction) error {
	if len(entries) == 0 {
		return nil
	}

	args := make([]interface{}, 0, 5*len(entries))
	values := make([]string, 0, len(entries))

	for i, entry := range entries {
		base := i*5 + 1
		values = append(values,
			fmt.Sprintf("($%d::uuid,$%d::text,$%d::text,$%d::timestamptz,$%d::text)",
				base, base+1, base+2, base+3, base+4,
			),
		)

		args = append(args,
			entry.ID,
			entry.UserID,
			entry.Status,
			entry.SettledAt,
			entry.Error,
		)
	}

	query := fmt.Sprintf(`
		UPDATE credit_transactions AS t
		SET
			status = v.status,
			settled_at = v.settled_at,
			error = v.error
		FROM (VALUES
			%s
		) AS v(id, user_id, status, settled_at, error)
		WHERE t.id = v.id AND t.user_id = v.user_id
	`, strings.Join(values, ","))

	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk UPDATE FROM VALUES failed: %w", err)
	}
	return nil
}
