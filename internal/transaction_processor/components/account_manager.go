package components

import (
	"log/slog"

	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/domain/shared"
	"github.com/accounts-replay-ledger/internal/transaction_processor/service"
)

// AccountManagerImpl implements the AccountManager interface
type AccountManagerImpl struct {
	logger *slog.Logger
}

// NewAccountManager creates a new AccountManagerImpl
func NewAccountManager(logger *slog.Logger) service.AccountManager {
	return &AccountManagerImpl{
		logger: logger,
	}
}

// ApplyTransaction opens the client's account if needed, checks the lock,
// resolves the amount and stores the transitioned account back in the ledger.
func (m *AccountManagerImpl) ApplyTransaction(l *ledger.Ledger, record shared.TransactionRecord, refs service.ReferenceResolver) (bool, shared.FailureReason) {
	// The account exists from here on, even if the record ends up skipped
	acc := l.GetOrCreate(record.ClientID)
	if acc.Locked {
		return false, shared.FailureReasonAccountLocked
	}

	amount := record.Amount
	if record.Type.IsDisputeFamily() {
		referenced, ok := refs.Resolve(record.TxID)
		if !ok {
			return false, shared.FailureReasonReferenceNotFound
		}
		amount = referenced
	}

	if record.Type == shared.TransactionTypeWithdrawal && !acc.CanWithdraw(amount) {
		return false, shared.FailureReasonInsufficientFunds
	}

	updated := acc.Apply(record.Type, amount)
	l.Put(updated)

	m.logger.Debug("Transaction applied",
		"tx", record.TxID,
		"client", record.ClientID,
		"type", record.Type,
		"available", updated.Available.String(),
		"held", updated.Held.String(),
		"locked", updated.Locked,
	)
	return true, ""
}
