package ledger

import (
	"github.com/accounts-replay-ledger/internal/domain/account"
)

// Ledger maps client IDs to accounts and remembers the order in which
// clients first appeared. It is owned by a single replay and is not safe
// for concurrent use.
type Ledger struct {
	accounts map[uint32]account.Account
	order    []uint32
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		accounts: make(map[uint32]account.Account),
	}
}

// GetOrCreate returns the client's account, opening a zero-balance one on first reference
func (l *Ledger) GetOrCreate(clientID uint32) account.Account {
	if acc, ok := l.accounts[clientID]; ok {
		return acc
	}

	acc := account.NewAccount(clientID)
	l.accounts[clientID] = acc
	l.order = append(l.order, clientID)
	return acc
}

// Get returns the client's account if it exists
func (l *Ledger) Get(clientID uint32) (account.Account, bool) {
	acc, ok := l.accounts[clientID]
	return acc, ok
}

// Put stores acc as the client's current state. A client not seen before is
// appended to the iteration order.
func (l *Ledger) Put(acc account.Account) {
	if _, ok := l.accounts[acc.ClientID]; !ok {
		l.order = append(l.order, acc.ClientID)
	}
	l.accounts[acc.ClientID] = acc
}

// Len returns the number of accounts
func (l *Ledger) Len() int {
	return len(l.order)
}

// Accounts returns all accounts in first-appearance order
func (l *Ledger) Accounts() []account.Account {
	accounts := make([]account.Account, 0, len(l.order))
	for _, clientID := range l.order {
		accounts = append(accounts, l.accounts[clientID])
	}
	return accounts
}
