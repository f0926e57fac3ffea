// Package producers publishes replay snapshots to Kafka.
package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/accounts-replay-ledger/internal/config"
	"github.com/accounts-replay-ledger/internal/domain/ledger"
)

const (
	sinkName = "kafka"

	// RunIDHeader carries the run a balance message belongs to
	RunIDHeader = "run_id"
)

// BalanceReportProducer writes one message per account of a snapshot, keyed by client
type BalanceReportProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

var _ ledger.SnapshotPublisher = (*BalanceReportProducer)(nil)

// NewBalanceReportProducer ensures the balance topic exists and opens a synchronous writer
func NewBalanceReportProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*BalanceReportProducer, error) {
	if cfg.BalanceTopic == "" {
		return nil, fmt.Errorf("kafka balance topic is not configured")
	}

	var dialer kafka.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for balance producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.BalanceTopic, cfg.NumPartitions, cfg.ReplicationFactor, defaultTopicProbe, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure balance topic %s exists: %w", cfg.BalanceTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.BalanceTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &BalanceReportProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.BalanceTopic,
	}, nil
}

func (p *BalanceReportProducer) Name() string {
	return sinkName
}

// PublishSnapshot writes the whole snapshot in a single batch
func (p *BalanceReportProducer) PublishSnapshot(ctx context.Context, snapshot *ledger.Snapshot) error {
	entries := snapshot.Entries()
	if len(entries) == 0 {
		p.logger.Debug("Empty snapshot, nothing to publish", "run_id", snapshot.RunID.String())
		return nil
	}

	runID := []byte(snapshot.RunID.String())
	msgs := make([]kafka.Message, 0, len(entries))
	for _, entry := range entries {
		value, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal balance of client %d: %w", entry.ClientID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(entry.Key()),
			Value:   value,
			Headers: []kafka.Header{{Key: RunIDHeader, Value: runID}},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("Failed to publish balance report",
			"topic", p.topic,
			"run_id", snapshot.RunID.String(),
			"error", err)
		return fmt.Errorf("failed to publish balance report to %s: %w", p.topic, err)
	}

	p.logger.Info("Published balance report",
		"topic", p.topic,
		"run_id", snapshot.RunID.String(),
		"messages", len(msgs))
	return nil
}

func (p *BalanceReportProducer) Close() error {
	p.logger.Info("Closing balance report producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
