package components

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/accounts-replay-ledger/internal/config"
	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/transaction_processor/service"
)

type MockSnapshotPublisher struct {
	mock.Mock
}

func (m *MockSnapshotPublisher) Name() string {
	return m.Called().String(0)
}

func (m *MockSnapshotPublisher) PublishSnapshot(ctx context.Context, snapshot *ledger.Snapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func TestCreateReplayService(t *testing.T) {
	replayService := CreateReplayService(slog.Default())

	require.NotNil(t, replayService)
	_, ok := replayService.(*service.ReplayServiceImpl)
	assert.True(t, ok)
}

func TestCreateSinks_NoneEnabled(t *testing.T) {
	cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 2}}

	sinks, err := CreateSinks(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	assert.Nil(t, sinks.Publisher)
	assert.NoError(t, sinks.Close(context.Background()))
}

func TestCreateSinks_PostgresFailureIsReported(t *testing.T) {
	cfg := &config.Config{
		Postgres:   config.PostgresConfig{Enabled: true, URL: "postgres://localhost:1/none", MigrationsPath: ""},
		WorkerPool: config.WorkerPoolConfig{Size: 2},
	}

	sinks, err := CreateSinks(context.Background(), cfg, slog.Default())
	require.Error(t, err)
	assert.Nil(t, sinks)
	assert.Contains(t, err.Error(), "failed to initialize postgres sink")
}

func TestSinks_UsePublishersFansOut(t *testing.T) {
	ctx := context.Background()
	first := new(MockSnapshotPublisher)
	second := new(MockSnapshotPublisher)
	snapshot := ledger.NewSnapshot(nil)

	first.On("Name").Return("first").Maybe()
	second.On("Name").Return("second").Maybe()
	first.On("PublishSnapshot", ctx, snapshot).Return(nil).Once()
	second.On("PublishSnapshot", ctx, snapshot).Return(nil).Once()

	sinks := &Sinks{logger: slog.Default()}
	err := sinks.usePublishers([]ledger.SnapshotPublisher{first, second}, config.WorkerPoolConfig{Size: 2}, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, sinks.Publisher)

	assert.NoError(t, sinks.Publisher.PublishSnapshot(ctx, snapshot))
	first.AssertExpectations(t)
	second.AssertExpectations(t)

	assert.NoError(t, sinks.Close(ctx))
}

func TestSinks_CloseRunsInReverseOrderAndJoinsErrors(t *testing.T) {
	var order []string
	closeErr := errors.New("disconnect failed")

	sinks := &Sinks{
		logger: slog.Default(),
		closers: []func(context.Context) error{
			func(context.Context) error { order = append(order, "postgres"); return nil },
			func(context.Context) error { order = append(order, "mongo"); return closeErr },
			func(context.Context) error { order = append(order, "kafka"); return nil },
		},
	}

	err := sinks.Close(context.Background())
	assert.ErrorIs(t, err, closeErr)
	assert.Equal(t, []string{"kafka", "mongo", "postgres"}, order)

	order = nil
	assert.NoError(t, sinks.Close(context.Background()))
	assert.Empty(t, order)
}
