package broker

import (
	"time"

	"funnel-copilot/internal/config"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter builds the producer for usage events. Keying by user
// plus the hash balancer keeps one user's events on one partition, so
// the settlement worker sees them in charge order.
func NewKafkaWriter(cfg config.KafkaConfig) (*kafka.Writer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		MaxAttempts:  10,
		BatchTimeout: 10 * time.Millisecond,
	}

	return writer, nil
}
