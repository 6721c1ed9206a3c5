package worker

import (
	"context"
	"fmt"
	"sync"

	"funnel-copilot/internal/config"
	"funnel-copilot/internal/services"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

type PartitionManager struct {
	cfg        *config.Config
	settlement *services.SettlementService
	wg         sync.WaitGroup
}

func NewPartitionManager(cfg *config.Config, settlement *services.SettlementService) *PartitionManager {
	return &PartitionManager{
		cfg:        cfg,
		settlement: settlement,
	}
}

func (m *PartitionManager) Start(ctx context.Context) error {
	log.WithField("partitions", m.cfg.Kafka.Partitions).Info("starting settlement workers")

	consumer, err := sarama.NewConsumer(m.cfg.Kafka.Brokers, m.cfg.Kafka.GetSaramaConfig())
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer: %w", err)
	}
	defer consumer.Close()

	for partition := 0; partition < m.cfg.Kafka.Partitions; partition++ {
		m.wg.Add(1)
		go m.startWorkerForPartition(ctx, consumer, partition)
	}

	// Wait for all workers to complete to prevent program termination
	m.wg.Wait()
	log.Info("all partition workers stopped")
	return nil
}

func (m *PartitionManager) startWorkerForPartition(ctx context.Context, consumer sarama.Consumer, partition int) {
	defer m.wg.Done()

	logger := log.WithField("partition", partition)
	logger.Info("starting worker")

	// Create a PartitionConsumer for a specific partition
	partitionConsumer, err := consumer.ConsumePartition(
		m.cfg.Kafka.Topic,
		int32(partition),
		sarama.OffsetNewest,
	)
	if err != nil {
		logger.WithError(err).Error("failed to create partition consumer")
		return
	}
	defer partitionConsumer.Close()

	// Create a BatchProcessor for this partition
	batchProcessor := NewBatchProcessor(partition, m.settlement)

	// Start the main worker loop
	m.runWorker(ctx, partition, partitionConsumer, batchProcessor)
}
