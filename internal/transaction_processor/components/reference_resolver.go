package components

import (
	"github.com/shopspring/decimal"

	"github.com/accounts-replay-ledger/internal/domain/shared"
	"github.com/accounts-replay-ledger/internal/transaction_processor/service"
)

// DepositIndexer builds a tx ID to deposit amount index
type DepositIndexer struct{}

// NewDepositIndexer creates a new DepositIndexer
func NewDepositIndexer() service.ReferenceIndexer {
	return DepositIndexer{}
}

// Index scans the records once. When several deposits share a tx ID the first
// one in the given order wins.
func (DepositIndexer) Index(records []shared.TransactionRecord) service.ReferenceResolver {
	index := make(depositIndex)
	for _, record := range records {
		if record.Type != shared.TransactionTypeDeposit {
			continue
		}
		if _, exists := index[record.TxID]; !exists {
			index[record.TxID] = record.Amount
		}
	}
	return index
}

// depositIndex is read-only once built
type depositIndex map[uint32]decimal.Decimal

func (idx depositIndex) Resolve(txID uint32) (decimal.Decimal, bool) {
	amount, ok := idx[txID]
	return amount, ok
}
