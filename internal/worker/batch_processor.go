package worker

import (
	"sync"
	"time"

	"funnel-copilot/internal/models"
	"funnel-copilot/internal/services"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

type BatchProcessor struct {
	partitionID   int
	settlement    *services.SettlementService
	messages      []*sarama.ConsumerMessage
	events        []models.UsageEvent
	mutex         sync.Mutex
	lastProcessed time.Time
}

func NewBatchProcessor(partitionID int, settlement *services.SettlementService) *BatchProcessor {
	return &BatchProcessor{
		partitionID:   partitionID,
		settlement:    settlement,
		messages:      make([]*sarama.ConsumerMessage, 0),
		events:        make([]models.UsageEvent, 0),
		lastProcessed: time.Now(),
	}
}

func (bp *BatchProcessor) AddMessage(msg *sarama.ConsumerMessage, event models.UsageEvent) {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	bp.messages = append(bp.messages, msg)
	bp.events = append(bp.events, event)
}

func (bp *BatchProcessor) ProcessBatch() {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	bp.processBatchLocked()
}

func (bp *BatchProcessor) processBatchLocked() {
	if len(bp.messages) == 0 {
		return
	}

	logger := log.WithField("partition", bp.partitionID)
	logger.WithField("messages", len(bp.messages)).Info("processing batch")

	userEvents := bp.groupByUser()

	// Settle entries for each user
	for userID, events := range userEvents {
		if err := bp.settlement.SettleUserEntries(userID, events); err != nil {
			logger.WithError(err).WithField("user", userID).Error("failed to settle usage entries")
			// Continue processing other users
			continue
		}
	}

	// Clear the batch
	bp.messages = bp.messages[:0]
	bp.events = bp.events[:0]
	bp.lastProcessed = time.Now()

	logger.Info("batch processed successfully")
}

func (bp *BatchProcessor) ProcessRemaining() {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if len(bp.messages) > 0 {
		log.WithFields(log.Fields{
			"partition": bp.partitionID,
			"messages":  len(bp.messages),
		}).Info("processing remaining messages before shutdown")
		bp.processBatchLocked()
	}
}

func (bp *BatchProcessor) groupByUser() map[string][]models.UsageEvent {
	userEvents := make(map[string][]models.UsageEvent)

	for _, event := range bp.events {
		userEvents[event.UserID] = append(userEvents[event.UserID], event)
	}

	return userEvents
}
