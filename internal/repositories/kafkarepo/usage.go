package kafkarepo

import (
	"context"
	"encoding/json"
	"fmt"

	"funnel-copilot/internal/models"

	"github.com/segmentio/kafka-go"
)

type UsageRepository struct {
	writer *kafka.Writer
}

func NewUsageRepository(writer *kafka.Writer) *UsageRepository {
	return &UsageRepository{
		writer: writer,
	}
}

// PublishUsage sends a usage event to Kafka
func (r *UsageRepository) PublishUsage(ctx context.Context, event models.UsageEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal usage event: %w", err)
	}

	// Use userID as key to guarantee processing order for events of the same user
	err = r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: msgBytes,
	})

	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}
