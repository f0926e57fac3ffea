package service

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/accounts-replay-ledger/internal/domain/account"
	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/domain/shared"
)

// Result is the outcome of one replay
type Result struct {
	Accounts  []account.Account            `json:"accounts"`
	Processed int                          `json:"processed"`
	Applied   int                          `json:"applied"`
	Skipped   map[shared.FailureReason]int `json:"skipped"`
}

// SkippedTotal returns the number of records absorbed as no-ops
func (r *Result) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

type ReplayServiceImpl struct {
	indexer         ReferenceIndexer
	accountManager  AccountManager
	failureRecorder FailureRecorder
	logger          *slog.Logger
}

func NewReplayService(
	indexer ReferenceIndexer,
	accountManager AccountManager,
	failureRecorder FailureRecorder,
	logger *slog.Logger,
) ReplayService {
	return &ReplayServiceImpl{
		indexer:         indexer,
		accountManager:  accountManager,
		failureRecorder: failureRecorder,
		logger:          logger,
	}
}

// Replay applies the records in tx ID order and returns the accounts in the
// order their clients first appeared. The caller's slice is not reordered.
func (s *ReplayServiceImpl) Replay(records []shared.TransactionRecord) *Result {
	// 1. Stable sort by tx ID; records sharing an ID keep their input order
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b shared.TransactionRecord) int {
		return cmp.Compare(a.TxID, b.TxID)
	})

	// 2. Index deposits once so dispute lookups stay O(1)
	refs := s.indexer.Index(sorted)

	// 3. Single pass over the ledger
	l := ledger.New()
	result := &Result{
		Skipped: make(map[shared.FailureReason]int),
	}
	for _, record := range sorted {
		result.Processed++

		applied, reason := s.accountManager.ApplyTransaction(l, record, refs)
		if !applied {
			result.Skipped[reason]++
			s.failureRecorder.RecordSkip(record, reason)
			continue
		}
		result.Applied++
	}

	result.Accounts = l.Accounts()

	s.logger.Info("Replay completed",
		"records", result.Processed,
		"applied", result.Applied,
		"skipped", result.SkippedTotal(),
		"accounts", len(result.Accounts),
	)
	return result
}
