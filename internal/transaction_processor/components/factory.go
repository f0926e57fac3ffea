package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/accounts-replay-ledger/internal/config"
	"github.com/accounts-replay-ledger/internal/data/mongo"
	"github.com/accounts-replay-ledger/internal/data/postgres"
	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/platform/messaging/producers"
	"github.com/accounts-replay-ledger/internal/platform/persistence"
	"github.com/accounts-replay-ledger/internal/transaction_processor/service"
)

// CreateReplayService creates a new ReplayService with all its dependencies.
func CreateReplayService(logger *slog.Logger) service.ReplayService {
	return service.NewReplayService(
		NewDepositIndexer(),
		NewAccountManager(logger.With("component", "account_manager")),
		NewFailureRecorder(logger.With("component", "failure_recorder")),
		logger,
	)
}

// Sinks owns the connections behind the enabled snapshot sinks
type Sinks struct {
	// Publisher is nil when no sink is enabled
	Publisher ledger.SnapshotPublisher

	closers []func(ctx context.Context) error
	logger  *slog.Logger
}

// CreateSinks connects every enabled sink and wraps them in a worker pool
// publisher. Connections opened before a failure are closed again.
func CreateSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Sinks, error) {
	sinks := &Sinks{logger: logger}
	if !cfg.AnySinkEnabled() {
		logger.Debug("No snapshot sink enabled")
		return sinks, nil
	}

	var publishers []ledger.SnapshotPublisher

	if cfg.Postgres.Enabled {
		pgDB, err := persistence.NewPostgresDB(ctx, logger, &cfg.Postgres)
		if err != nil {
			return nil, sinks.closeAfter(ctx, fmt.Errorf("failed to initialize postgres sink: %w", err))
		}
		sinks.closers = append(sinks.closers, pgDB.Close)
		publishers = append(publishers, postgres.NewBalanceRepository(logger.With("sink", "postgres"), pgDB))
	}

	if cfg.MongoDB.Enabled {
		mongoDB, err := persistence.NewMongoDB(ctx, logger, &cfg.MongoDB)
		if err != nil {
			return nil, sinks.closeAfter(ctx, fmt.Errorf("failed to initialize mongo sink: %w", err))
		}
		sinks.closers = append(sinks.closers, mongoDB.Close)
		publishers = append(publishers, mongo.NewBalanceRepository(logger.With("sink", "mongo"), mongoDB.Database()))
	}

	if cfg.Kafka.Enabled {
		producer, err := producers.NewBalanceReportProducer(ctx, logger.With("sink", "kafka"), &cfg.Kafka)
		if err != nil {
			return nil, sinks.closeAfter(ctx, fmt.Errorf("failed to initialize kafka sink: %w", err))
		}
		sinks.closers = append(sinks.closers, func(context.Context) error { return producer.Close() })
		publishers = append(publishers, producer)
	}

	if err := sinks.usePublishers(publishers, cfg.WorkerPool, logger); err != nil {
		return nil, sinks.closeAfter(ctx, err)
	}
	return sinks, nil
}

func (s *Sinks) usePublishers(publishers []ledger.SnapshotPublisher, poolCfg config.WorkerPoolConfig, logger *slog.Logger) error {
	publisher, err := service.NewWorkerPoolSnapshotPublisher(
		publishers,
		service.WorkerPoolConfig{Size: poolCfg.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		return fmt.Errorf("failed to create snapshot worker pool: %w", err)
	}

	s.closers = append(s.closers, func(context.Context) error {
		publisher.Shutdown()
		return nil
	})
	s.Publisher = publisher

	logger.Info("Snapshot sinks ready", "sinks", len(publishers), "pool_size", publisher.Capacity())
	return nil
}

// Close releases sinks in reverse order of creation
func (s *Sinks) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			s.logger.Error("Failed to close snapshot sink", "error", err)
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Sinks) closeAfter(ctx context.Context, cause error) error {
	if err := s.Close(ctx); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
