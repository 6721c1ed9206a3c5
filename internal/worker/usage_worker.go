package worker

import (
	"context"
	"encoding/json"
	"time"

	"funnel-copilot/internal/models"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

func (m *PartitionManager) runWorker(ctx context.Context, partition int, partitionConsumer sarama.PartitionConsumer, batchProcessor *BatchProcessor) {
	logger := log.WithField("partition", partition)

	ticker := time.NewTicker(m.cfg.Worker.ProcessingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Context canceled - terminating work
			logger.Info("shutdown signal received")
			batchProcessor.ProcessRemaining()
			return

		case msg := <-partitionConsumer.Messages():
			// New usage event from Kafka
			var event models.UsageEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.WithError(err).Error("failed to unmarshal usage event")
				continue
			}
			batchProcessor.AddMessage(msg, event)

		case err := <-partitionConsumer.Errors():
			// Error from Kafka
			logger.WithError(err).Error("kafka error")

		case <-ticker.C:
			// The timer has triggered - process the batch
			batchProcessor.ProcessBatch()
		}
	}
}
