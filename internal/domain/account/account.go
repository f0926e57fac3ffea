package account

import (
	"github.com/shopspring/decimal"

	"github.com/accounts-replay-ledger/internal/domain/shared"
)

// Account represents a client's balances during one replay
type Account struct {
	ClientID  uint32          `json:"client" bson:"client"`
	Available decimal.Decimal `json:"available" bson:"available"`
	Held      decimal.Decimal `json:"held" bson:"held"`
	Total     decimal.Decimal `json:"total" bson:"total"` // Always Available + Held
	Locked    bool            `json:"locked" bson:"locked"`
}

// NewAccount creates an unlocked account with zero balances
func NewAccount(clientID uint32) Account {
	return Account{
		ClientID:  clientID,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
		Locked:    false,
	}
}

// Apply returns the account state after a transaction of the given type.
// For dispute-family types amount is the referenced deposit's amount.
// The receiver is left untouched and the lock flag is not consulted here;
// skipping locked accounts is the replay's job.
func (a Account) Apply(txType shared.TransactionType, amount decimal.Decimal) Account {
	next := a

	switch txType {
	case shared.TransactionTypeDeposit:
		next.Available = next.Available.Add(amount)
	case shared.TransactionTypeWithdrawal:
		if next.CanWithdraw(amount) {
			next.Available = next.Available.Sub(amount)
		}
	case shared.TransactionTypeDispute:
		next.Available = next.Available.Sub(amount)
		next.Held = next.Held.Add(amount)
	case shared.TransactionTypeResolve:
		// Releases the whole held balance but only clears the disputed amount from it.
		next.Available = next.Available.Add(next.Held)
		next.Held = next.Held.Sub(amount)
	case shared.TransactionTypeChargeback:
		next.Held = next.Held.Sub(amount)
		next.Locked = true
	}

	next.Total = next.Available.Add(next.Held)
	return next
}

// CanWithdraw reports whether a withdrawal leaves a strictly positive available balance
func (a Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Available.Sub(amount).IsPositive()
}
