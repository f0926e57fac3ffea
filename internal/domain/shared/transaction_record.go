package shared

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrMissingAmount          = errors.New("amount is required for deposits and withdrawals")
)

// TransactionRecord is one parsed input row. Amount is only meaningful for
// deposits and withdrawals; dispute-family records carry decimal.Zero.
type TransactionRecord struct {
	Type     TransactionType `json:"type"`
	ClientID uint32          `json:"client"`
	TxID     uint32          `json:"tx"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewTransactionRecord builds a record, dropping the amount of dispute-family types
func NewTransactionRecord(txType TransactionType, clientID, txID uint32, amount decimal.Decimal) TransactionRecord {
	if txType.IsDisputeFamily() {
		amount = decimal.Zero
	}
	return TransactionRecord{
		Type:     txType,
		ClientID: clientID,
		TxID:     txID,
		Amount:   amount,
	}
}
