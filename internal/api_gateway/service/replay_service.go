package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/platform/codec"
	tpservice "github.com/accounts-replay-ledger/internal/transaction_processor/service"
)

// ReplayServiceImpl implements the ReplayService interface
type ReplayServiceImpl struct {
	replayer  tpservice.ReplayService
	publisher ledger.SnapshotPublisher // nil when no sink is enabled
	logger    *slog.Logger
}

// NewReplayService creates a new replay service. publisher may be nil.
func NewReplayService(logger *slog.Logger, replayer tpservice.ReplayService, publisher ledger.SnapshotPublisher) ReplayService {
	return &ReplayServiceImpl{
		replayer:  replayer,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *ReplayServiceImpl) Replay(ctx context.Context, r io.Reader) (*ReplayRun, error) {
	records, err := codec.ParseTransactions(r)
	if err != nil {
		s.logger.Warn("Failed to parse transactions", "error", err)
		return nil, err
	}

	result := s.replayer.Replay(records)
	run := &ReplayRun{
		Snapshot: ledger.NewSnapshot(result.Accounts),
		Result:   result,
	}

	logger := s.logger.With("run_id", run.Snapshot.RunID.String())
	logger.Info("Replay finished",
		"records", result.Processed,
		"applied", result.Applied,
		"skipped", result.SkippedTotal(),
		"accounts", len(result.Accounts),
	)

	if s.publisher == nil {
		return run, nil
	}

	if err := s.publisher.PublishSnapshot(ctx, run.Snapshot); err != nil {
		logger.Error("Failed to export snapshot", "error", err)
		return run, fmt.Errorf("failed to export snapshot: %w", err)
	}
	return run, nil
}
