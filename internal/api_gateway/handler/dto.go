package handler

import (
	"time"

	"github.com/accounts-replay-ledger/internal/api_gateway/service"
	"github.com/accounts-replay-ledger/internal/domain/account"
	"github.com/accounts-replay-ledger/internal/report"
)

// AccountResponse represents an account balance in API responses
type AccountResponse struct {
	Client    uint32 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// ReplayResponse represents a finished replay in API responses
type ReplayResponse struct {
	RunID     string            `json:"run_id"`
	Accounts  []AccountResponse `json:"accounts"`
	Processed int               `json:"processed"`
	Applied   int               `json:"applied"`
	Skipped   map[string]int    `json:"skipped"`
	CreatedAt string            `json:"created_at"`
}

func toAccountResponse(acc account.Account) AccountResponse {
	return AccountResponse{
		Client:    acc.ClientID,
		Available: report.FormatAmount(acc.Available),
		Held:      report.FormatAmount(acc.Held),
		Total:     report.FormatAmount(acc.Total),
		Locked:    acc.Locked,
	}
}

func toReplayResponse(run *service.ReplayRun) ReplayResponse {
	accounts := make([]AccountResponse, 0, len(run.Result.Accounts))
	for _, acc := range run.Result.Accounts {
		accounts = append(accounts, toAccountResponse(acc))
	}

	skipped := make(map[string]int, len(run.Result.Skipped))
	for reason, count := range run.Result.Skipped {
		skipped[string(reason)] = count
	}

	return ReplayResponse{
		RunID:     run.Snapshot.RunID.String(),
		Accounts:  accounts,
		Processed: run.Result.Processed,
		Applied:   run.Result.Applied,
		Skipped:   skipped,
		CreatedAt: run.Snapshot.CreatedAt.Format(time.RFC3339Nano),
	}
}

// runIDHeader echoes the run ID on every replay response
const runIDHeader = "X-Run-ID"
