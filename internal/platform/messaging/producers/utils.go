package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// topicProbe controls how often partitions are read before a topic is assumed missing
type topicProbe struct {
	attempts int
	backoff  time.Duration
}

var defaultTopicProbe = topicProbe{attempts: 5, backoff: 2 * time.Second}

// ensureTopic creates the topic unless its partitions can be read.
// Zero partition or replication counts fall back to 1.
func ensureTopic(admin TopicAdmin, topic string, numPartitions, replicationFactor int, probe topicProbe, log *slog.Logger) error {
	var (
		partitions []kafka.Partition
		err        error
	)

	log.Debug("Checking if Kafka topic exists", "topic", topic)
	for attempt := 1; attempt <= probe.attempts; attempt++ {
		partitions, err = admin.ReadPartitions(topic)
		if err == nil && len(partitions) > 0 {
			log.Debug("Kafka topic already exists", "topic", topic, "partitions", len(partitions))
			return nil
		}
		log.Warn("Failed to read partitions", "topic", topic, "attempt", attempt, "error", err)
		if attempt < probe.attempts {
			time.Sleep(probe.backoff)
		}
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}

	log.Info("Creating Kafka topic",
		"topic", topic,
		"partitions", topicConfig.NumPartitions,
		"replication_factor", topicConfig.ReplicationFactor)
	if err := admin.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	return nil
}
