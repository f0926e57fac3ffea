package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/accounts-replay-ledger/internal/domain/account"
)

// Snapshot is the final state of one replay run, ready to be exported
type Snapshot struct {
	RunID     uuid.UUID         `json:"run_id"`
	Accounts  []account.Account `json:"accounts"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewSnapshot stamps the accounts of a finished run with a fresh run ID
func NewSnapshot(accounts []account.Account) *Snapshot {
	return &Snapshot{
		RunID:     uuid.New(),
		Accounts:  accounts,
		CreatedAt: time.Now().UTC(),
	}
}

// BalanceEntry is the export shape of one account in a snapshot.
// Amounts are kept as decimal strings so no sink rounds them.
type BalanceEntry struct {
	RunID     uuid.UUID `json:"run_id" bson:"run_id"`
	ClientID  uint32    `json:"client" bson:"client"`
	Available string    `json:"available" bson:"available"`
	Held      string    `json:"held" bson:"held"`
	Total     string    `json:"total" bson:"total"`
	Locked    bool      `json:"locked" bson:"locked"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Entries flattens the snapshot into one BalanceEntry per account, in report order
func (s *Snapshot) Entries() []BalanceEntry {
	entries := make([]BalanceEntry, 0, len(s.Accounts))
	for _, acc := range s.Accounts {
		entries = append(entries, BalanceEntry{
			RunID:     s.RunID,
			ClientID:  acc.ClientID,
			Available: acc.Available.String(),
			Held:      acc.Held.String(),
			Total:     acc.Total.String(),
			Locked:    acc.Locked,
			CreatedAt: s.CreatedAt,
		})
	}
	return entries
}

// Key returns the partitioning key of an entry
func (e BalanceEntry) Key() string {
	return strconv.FormatUint(uint64(e.ClientID), 10)
}

// SnapshotPublisher exports a finished snapshot to an external system
type SnapshotPublisher interface {
	Name() string
	PublishSnapshot(ctx context.Context, snapshot *Snapshot) error
}

// ErrPublishFailed wraps a sink failure with the sink's name
type ErrPublishFailed struct {
	Sink  string
	RunID uuid.UUID
	Err   error
}

func (e ErrPublishFailed) Error() string {
	return "failed to publish snapshot " + e.RunID.String() + " to " + e.Sink + ": " + e.Err.Error()
}

func (e ErrPublishFailed) Unwrap() error {
	return e.Err
}

// Is implements the errors.Is interface for ErrPublishFailed
func (e ErrPublishFailed) Is(target error) bool {
	t, ok := target.(ErrPublishFailed)
	if !ok {
		return false
	}
	// An empty target sink matches any publish failure
	if t.Sink == "" {
		return true
	}
	return e.Sink == t.Sink
}
