package components

import (
	"log/slog"

	"github.com/accounts-replay-ledger/internal/domain/shared"
	"github.com/accounts-replay-ledger/internal/transaction_processor/service"
)

type FailureRecorderImpl struct {
	logger *slog.Logger
}

func NewFailureRecorder(logger *slog.Logger) service.FailureRecorder {
	return &FailureRecorderImpl{
		logger: logger,
	}
}

// RecordSkip logs a record that the replay absorbed as a no-op
func (r *FailureRecorderImpl) RecordSkip(record shared.TransactionRecord, reason shared.FailureReason) {
	r.logger.Debug("Transaction skipped",
		"tx", record.TxID,
		"client", record.ClientID,
		"type", record.Type,
		"reason", reason,
	)
}
