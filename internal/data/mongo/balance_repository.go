package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/accounts-replay-ledger/internal/domain/ledger"
)

const (
	// BalanceCollectionName is the name of the balance snapshot collection in MongoDB
	BalanceCollectionName = "account_balances"

	sinkName = "mongo"
)

// BalanceCollection is the subset of *mongo.Collection the repository writes through
type BalanceCollection interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

var _ BalanceCollection = (*mongo.Collection)(nil)

// BalanceRepository stores one document per account of a snapshot
type BalanceRepository struct {
	collection BalanceCollection
	logger     *slog.Logger
}

var _ ledger.SnapshotPublisher = (*BalanceRepository)(nil)

// NewBalanceRepository creates a MongoDB balance repository
func NewBalanceRepository(logger *slog.Logger, db *mongo.Database) *BalanceRepository {
	return &BalanceRepository{
		collection: db.Collection(BalanceCollectionName),
		logger:     logger,
	}
}

func (r *BalanceRepository) Name() string {
	return sinkName
}

// PublishSnapshot inserts the snapshot entries in report order
func (r *BalanceRepository) PublishSnapshot(ctx context.Context, snapshot *ledger.Snapshot) error {
	entries := snapshot.Entries()
	if len(entries) == 0 {
		r.logger.Debug("Empty snapshot, nothing to store", "run_id", snapshot.RunID.String())
		return nil
	}

	documents := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		documents = append(documents, entry)
	}

	result, err := r.collection.InsertMany(ctx, documents, options.InsertMany().SetOrdered(true))
	if err != nil {
		r.logger.Error("Failed to insert balance documents",
			"run_id", snapshot.RunID.String(),
			"error", err)
		return fmt.Errorf("failed to insert balance documents: %w", err)
	}

	r.logger.Info("Stored balance snapshot",
		"run_id", snapshot.RunID.String(),
		"documents", len(result.InsertedIDs))
	return nil
}
