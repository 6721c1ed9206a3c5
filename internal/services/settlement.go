package services

import (
	"context"
	"fmt"
	"time"

	"funnel-copilot/internal/models"
	"funnel-copilot/internal/repositories/postgresrepo"

	log "github.com/sirupsen/logrus"
)

// SettlementService folds consumed usage events into weekly summaries
// and flips ledger entries from PENDING to SETTLED. Balances are never
// touched here; they were already mutated at charge time.
type SettlementService struct {
	usageRepo *postgresrepo.UsageRepo
}

func NewSettlementService(usageRepo *postgresrepo.UsageRepo) *SettlementService {
	return &SettlementService{usageRepo: usageRepo}
}

// SettleUserEntries processes a batch of usage events for one user.
func (s *SettlementService) SettleUserEntries(userID string, events []models.UsageEvent) error {
	ctx := context.Background()

	txRepo, err := s.usageRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	entriesToUpdate, touchedWeeks, err := s.settleInTx(ctx, txRepo, userID, events)
	if err != nil {
		if rollbackErr := txRepo.Rollback(); rollbackErr != nil {
			return fmt.Errorf("settle error: %w, rollback error: %v", err, rollbackErr)
		}
		return fmt.Errorf("failed to settle entries: %w", err)
	}

	if len(entriesToUpdate) > 0 {
		if err := txRepo.BulkUpdateEntries(ctx, entriesToUpdate); err != nil {
			if rollbackErr := txRepo.Rollback(); rollbackErr != nil {
				return fmt.Errorf("bulk update error: %w, rollback error: %v", err, rollbackErr)
			}
			return fmt.Errorf("failed to bulk update entries: %w", err)
		}
	}

	for _, usage := range touchedWeeks {
		if err := txRepo.UpdateWeeklyUsage(ctx, usage); err != nil {
			if rollbackErr := txRepo.Rollback(); rollbackErr != nil {
				return fmt.Errorf("update usage error: %w, rollback error: %v", err, rollbackErr)
			}
			return fmt.Errorf("failed to update weekly usage: %w", err)
		}
	}

	if err := txRepo.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *SettlementService) settleInTx(
	ctx context.Context,
	txRepo *postgresrepo.TxUsageRepo,
	userID string,
	events []models.UsageEvent,
) ([]models.CreditTransaction, map[time.Time]*models.WeeklyUsage, error) {

	entryIDs := make([]string, len(events))
	for i, event := range events {
		entryIDs[i] = event.EntryID
	}

	existingEntries, err := txRepo.GetEntriesByIDs(ctx, userID, entryIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	existingByID := make(map[string]models.CreditTransaction)
	for _, entry := range existingEntries {
		existingByID[entry.ID] = entry
	}

	now := time.Now().UTC()
	entriesToUpdate := make([]models.CreditTransaction, 0)
	touchedWeeks := make(map[time.Time]*models.WeeklyUsage)

	for _, event := range events {
		entry, exists := existingByID[event.EntryID]
		if !exists {
			log.WithField("entry", event.EntryID).Warn("usage event references unknown ledger entry")
			continue
		}

		// Redelivered events arrive with a non-PENDING entry; skip them.
		if entry.Status != models.EntryStatusPending {
			continue
		}

		week := WeekStart(entry.CreatedAt)
		usage, locked := touchedWeeks[week]
		if !locked {
			usage, err = txRepo.LockWeeklyUsage(ctx, userID, week)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to lock weekly usage: %w", err)
			}
			touchedWeeks[week] = usage
		}

		entriesToUpdate = append(entriesToUpdate, applyEntry(event, entry, usage, now))
	}

	return entriesToUpdate, touchedWeeks, nil
}

// applyEntry folds one event into the week's summary and returns the
// updated ledger entry.
func applyEntry(
	event models.UsageEvent,
	existingEntry models.CreditTransaction,
	usage *models.WeeklyUsage,
	now time.Time,
) models.CreditTransaction {

	updated := existingEntry

	switch event.Direction {
	case models.DirectionDebit:
		usage.CreditsSpent += event.Amount
		usage.Operations++
		updated.Status = models.EntryStatusSettled
		settledAt := now
		updated.SettledAt = &settledAt

	case models.DirectionCredit:
		usage.CreditsAdded += event.Amount
		usage.Operations++
		updated.Status = models.EntryStatusSettled
		settledAt := now
		updated.SettledAt = &settledAt

	default:
		updated.Status = models.EntryStatusFailed
		msg := fmt.Sprintf("unknown direction: %s", event.Direction)
		updated.Error = &msg
	}

	return updated
}

// WeekStart truncates a time to the Monday 00:00 UTC of its week.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
