package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/accounts-replay-ledger/internal/domain/ledger"
)

// WorkerPoolSnapshotPublisher fans a snapshot out to every configured sink
// on a bounded worker pool and waits for all of them.
type WorkerPoolSnapshotPublisher struct {
	publishers []ledger.SnapshotPublisher
	pool       *ants.Pool
	logger     *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolSnapshotPublisher(
	publishers []ledger.SnapshotPublisher,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolSnapshotPublisher, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolSnapshotPublisher{
		publishers: publishers,
		pool:       pool,
		logger:     logger,
	}, nil
}

// Name implements ledger.SnapshotPublisher
func (s *WorkerPoolSnapshotPublisher) Name() string {
	return "worker_pool"
}

// PublishSnapshot hands the snapshot to each sink in its own task. Every sink
// is attempted; failures are joined into the returned error.
func (s *WorkerPoolSnapshotPublisher) PublishSnapshot(ctx context.Context, snapshot *ledger.Snapshot) error {
	logger := s.logger.With("run_id", snapshot.RunID.String())
	errs := make([]error, len(s.publishers))

	var wg sync.WaitGroup
	for i, publisher := range s.publishers {
		i, publisher := i, publisher
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if err := publisher.PublishSnapshot(ctx, snapshot); err != nil {
				logger.Error("Failed to publish snapshot", "sink", publisher.Name(), "error", err)
				errs[i] = ledger.ErrPublishFailed{Sink: publisher.Name(), RunID: snapshot.RunID, Err: err}
				return
			}
			logger.Info("Snapshot published", "sink", publisher.Name(), "accounts", len(snapshot.Accounts))
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit snapshot to worker pool", "sink", publisher.Name(), "error", err)
			errs[i] = ledger.ErrPublishFailed{Sink: publisher.Name(), RunID: snapshot.RunID, Err: err}
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Shutdown releases the worker pool
func (s *WorkerPoolSnapshotPublisher) Shutdown() {
	s.logger.Info("Shutting down snapshot worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolSnapshotPublisher) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolSnapshotPublisher) Capacity() int {
	return s.pool.Cap()
}

var _ ledger.SnapshotPublisher = (*WorkerPoolSnapshotPublisher)(nil)
