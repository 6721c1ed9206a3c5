package worker

import (
	"context"
	"fmt"
	"time"

	"funnel-copilot/internal/repositories/postgresrepo"
	"funnel-copilot/internal/services"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the weekly usage rollup. The rollup recomputes summary
// rows from the settled ledger, repairing any drift left by failed
// batches.
type Scheduler struct {
	cron      *cron.Cron
	usageRepo *postgresrepo.UsageRepo
}

func NewScheduler(usageRepo *postgresrepo.UsageRepo) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		usageRepo: usageRepo,
	}
}

// rollupSchedule fires every Monday 06:00 UTC, after the week closes.
const rollupSchedule = "0 6 * * 1"

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(rollupSchedule, func() {
		lastWeek := services.WeekStart(time.Now().UTC()).AddDate(0, 0, -7)

		rollupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		log.WithField("week", lastWeek.Format("2006-01-02")).Info("[CRON] weekly usage rollup")
		if err := s.usageRepo.RollupWeek(rollupCtx, lastWeek); err != nil {
			log.WithError(err).Error("[CRON] weekly rollup failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule weekly rollup: %w", err)
	}

	s.cron.Start()
	log.Info("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Info("scheduler stopped")
}
