// Package billing implements the credit gate in front of every paid
// operation: a charge must succeed before the expensive action runs, so
// a failed charge guarantees nothing was spent downstream.
package billing

import (
	"context"
	"fmt"

	"funnel-copilot/internal/models"
	"funnel-copilot/internal/repositories/postgresrepo"

	log "github.com/sirupsen/logrus"
)

// ErrInsufficientCredits is returned by Charge when the wallet cannot
// cover the amount. Callers branch with errors.Is; the error message is
// never parsed.
var ErrInsufficientCredits = postgresrepo.ErrInsufficientCredits

type WalletStore interface {
	DebitCredits(ctx context.Context, userID string, amount int64) error
	AddCredits(ctx context.Context, userID string, amount int64) error
	CreateLedgerEntry(ctx context.Context, userID, operation, direction string, amount int64) (string, error)
}

type BalanceCache interface {
	DeleteBalance(ctx context.Context, userID string) error
}

type UsagePublisher interface {
	PublishUsage(ctx context.Context, event models.UsageEvent) error
}

type Meter struct {
	store WalletStore
	cache BalanceCache
	usage UsagePublisher
}

func NewMeter(store WalletStore, cache BalanceCache, usage UsagePublisher) *Meter {
	return &Meter{
		store: store,
		cache: cache,
		usage: usage,
	}
}

// Charge debits amount credits from the user's wallet before a paid
// operation runs. Amounts <= 0 are silent no-ops. On insufficient
// balance it returns ErrInsufficientCredits; any other store error is
// passed through wrapped. The ledger entry and usage event are
// best-effort: a bookkeeping failure never voids a successful debit.
func (m *Meter) Charge(ctx context.Context, userID, operation string, amount int64) error {
	if amount <= 0 {
		return nil
	}

	if err := m.store.DebitCredits(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to charge %s: %w", operation, err)
	}

	m.record(ctx, userID, operation, models.DirectionDebit, amount)

	return nil
}

// Credit adds amount credits to the user's wallet. Amounts <= 0 are
// silent no-ops.
func (m *Meter) Credit(ctx context.Context, userID, operation string, amount int64) error {
	if amount <= 0 {
		return nil
	}

	if err := m.store.AddCredits(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to credit %s: %w", operation, err)
	}

	m.record(ctx, userID, operation, models.DirectionCredit, amount)

	return nil
}

// Refund returns a charge after the paid action failed downstream.
func (m *Meter) Refund(ctx context.Context, userID string, amount int64) error {
	return m.Credit(ctx, userID, models.OperationRefund, amount)
}

func (m *Meter) record(ctx context.Context, userID, operation, direction string, amount int64) {
	if err := m.cache.DeleteBalance(ctx, userID); err != nil {
		log.WithError(err).WithField("user", userID).Warn("failed to invalidate balance cache")
	}

	entryID, err := m.store.CreateLedgerEntry(ctx, userID, operation, direction, amount)
	if err != nil {
		log.WithError(err).WithField("user", userID).Warn("failed to create ledger entry")
		return
	}

	event := models.UsageEvent{
		EntryID:   entryID,
		UserID:    userID,
		Operation: operation,
		Direction: direction,
		Amount:    amount,
	}
	if err := m.usage.PublishUsage(ctx, event); err != nil {
		log.WithError(err).WithField("user", userID).Warn("failed to publish usage event")
	}
}
