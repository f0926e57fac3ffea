// Package postgres exports replay snapshots into PostgreSQL. Each run is written
// inside one transaction so a report is either stored whole or not at all.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/platform/persistence"
)

const sinkName = "postgres"

const insertBalanceQuery = `
		INSERT INTO account_balances (run_id, client_id, available, held, total, locked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id, client_id) DO UPDATE
		SET available = EXCLUDED.available, held = EXCLUDED.held, total = EXCLUDED.total, locked = EXCLUDED.locked
	`

// BalanceRepository writes the balances of a snapshot to the account_balances table
type BalanceRepository struct {
	querier persistence.Querier // Usually *pgxpool.Pool
	logger  *slog.Logger
}

var _ ledger.SnapshotPublisher = (*BalanceRepository)(nil)

// NewBalanceRepository creates a balance repository on top of the pool of db
func NewBalanceRepository(logger *slog.Logger, db *persistence.PostgresDB) *BalanceRepository {
	return &BalanceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *BalanceRepository) Name() string {
	return sinkName
}

// PublishSnapshot stores one row per account. Amounts are bound as decimal
// strings into NUMERIC columns.
func (r *BalanceRepository) PublishSnapshot(ctx context.Context, snapshot *ledger.Snapshot) (err error) {
	tx, err := r.querier.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to begin transaction", "run_id", snapshot.RunID.String(), "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.Error("Failed to rollback transaction", "run_id", snapshot.RunID.String(), "error", rbErr)
		}
	}()

	for _, entry := range snapshot.Entries() {
		_, err = tx.Exec(ctx, insertBalanceQuery,
			entry.RunID,
			entry.ClientID,
			entry.Available,
			entry.Held,
			entry.Total,
			entry.Locked,
			entry.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert account balance",
				"run_id", entry.RunID.String(),
				"client_id", entry.ClientID,
				"error", err)
			return fmt.Errorf("failed to insert balance of client %d: %w", entry.ClientID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit transaction", "run_id", snapshot.RunID.String(), "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Stored balance snapshot",
		"run_id", snapshot.RunID.String(),
		"accounts", len(snapshot.Accounts))
	return nil
}
