package service

import (
	"context"
	"io"

	"github.com/accounts-replay-ledger/internal/domain/ledger"
	tpservice "github.com/accounts-replay-ledger/internal/transaction_processor/service"
)

// ReplayRun is the outcome of replaying one transaction CSV
type ReplayRun struct {
	Snapshot *ledger.Snapshot
	Result   *tpservice.Result
}

// ReplayService defines the interface for replay runs
type ReplayService interface {
	// Replay parses the transaction CSV, replays it and exports the snapshot to
	// the configured sinks. Returns a *codec.ParseError for malformed input and an
	// error matching ledger.ErrPublishFailed when a sink rejects the snapshot;
	// in the latter case the run is returned as well.
	Replay(ctx context.Context, r io.Reader) (*ReplayRun, error)
}
