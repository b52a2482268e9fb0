package producers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/impairment-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// ensureTopic creates topic unless it already has partitions. Partition reads are
// retried cfg.TopicReadAttempts times, cfg.TopicReadBackoff apart, before the
// topic is treated as missing.
func ensureTopic(ctx context.Context, admin TopicAdmin, topic string, cfg *config.KafkaConfig, log *slog.Logger) error {
	attempts := cfg.TopicReadAttempts
	if attempts < 1 {
		attempts = 1
	}

	var partitions []kafka.Partition
	var err error

	log.Info("Checking if Kafka topic exists", "topic", topic)
	for i := 0; i < attempts; i++ {
		partitions, err = admin.ReadPartitions(topic)
		if err == nil {
			break
		}
		log.Warn("Failed to read partitions", "topic", topic, "attempt", i+1, "error", err)
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for kafka topic %s: %w", topic, ctx.Err())
		case <-time.After(cfg.TopicReadBackoff):
		}
	}

	if len(partitions) > 0 {
		if err != nil {
			log.Warn("Kafka topic exists but the last partition read failed", "topic", topic, "error", err)
		} else {
			log.Info("Kafka topic already exists", "topic", topic, "partitions", len(partitions))
		}
		return nil
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if topicConfig.NumPartitions <= 0 {
		topicConfig.NumPartitions = 1
	}
	if topicConfig.ReplicationFactor <= 0 {
		topicConfig.ReplicationFactor = 1
	}

	log.Info("Creating Kafka topic", "topic", topic, "partitions", topicConfig.NumPartitions, "last_read_error", err)
	if err := admin.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	log.Info("Successfully created Kafka topic", "topic", topic)
	return nil
}
