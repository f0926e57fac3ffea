package service

import (
	"github.com/shopspring/decimal"

	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/domain/shared"
)

// ReplayService turns a transaction stream into final account states.
type ReplayService interface {
	Replay(records []shared.TransactionRecord) *Result
}

// ReferenceResolver recovers the amount of the deposit a dispute-family record points at
type ReferenceResolver interface {
	Resolve(txID uint32) (decimal.Decimal, bool)
}

// ReferenceIndexer builds a ReferenceResolver over the records of one run
type ReferenceIndexer interface {
	Index(records []shared.TransactionRecord) ReferenceResolver
}

// AccountManager applies a single record to the ledger. It returns false and
// the reason when the record was absorbed as a no-op.
type AccountManager interface {
	ApplyTransaction(l *ledger.Ledger, record shared.TransactionRecord, refs ReferenceResolver) (bool, shared.FailureReason)
}

// FailureRecorder handles records that were skipped during replay
type FailureRecorder interface {
	RecordSkip(record shared.TransactionRecord, reason shared.FailureReason)
}
