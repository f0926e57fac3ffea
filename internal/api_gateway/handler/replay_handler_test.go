package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/accounts-replay-ledger/internal/api_gateway/service"
	"github.com/accounts-replay-ledger/internal/domain/account"
	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/domain/shared"
	"github.com/accounts-replay-ledger/internal/platform/codec"
	tpservice "github.com/accounts-replay-ledger/internal/transaction_processor/service"
)

type MockReplayService struct {
	mock.Mock
}

func (m *MockReplayService) Replay(ctx context.Context, r io.Reader) (*service.ReplayRun, error) {
	args := m.Called(ctx, r)
	var run *service.ReplayRun
	if args.Get(0) != nil {
		run = args.Get(0).(*service.ReplayRun)
	}
	return run, args.Error(1)
}

// ReplayEnvelope is the JSON body of a successful json-format replay
type ReplayEnvelope struct {
	Data          ReplayResponse `json:"data"`
	Error         *ErrorInfo     `json:"error,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

func newReplayRun() *service.ReplayRun {
	acc := account.NewAccount(1).Apply(shared.TransactionTypeDeposit, decimal.RequireFromString("1.5"))
	result := &tpservice.Result{
		Accounts:  []account.Account{acc, account.NewAccount(2)},
		Processed: 3,
		Applied:   1,
		Skipped:   map[shared.FailureReason]int{shared.FailureReasonReferenceNotFound: 2},
	}
	return &service.ReplayRun{
		Snapshot: ledger.NewSnapshot(result.Accounts),
		Result:   result,
	}
}

func newReplayRouter(svc service.ReplayService, maxUploadBytes int64) *gin.Engine {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	handler := NewReplayHandler(logger, svc, maxUploadBytes)

	router := gin.New()
	router.POST("/replays", handler.Create)
	return router
}

func doReplay(router *gin.Engine, target, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestReplayHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := "type,client,tx,amount\ndeposit,1,1,1.5\n"

	t.Run("CSVByDefault", func(t *testing.T) {
		mockService := new(MockReplayService)
		run := newReplayRun()
		mockService.On("Replay", mock.Anything, mock.Anything).Return(run, nil).Once()

		rr := doReplay(newReplayRouter(mockService, 1<<20), "/replays", body)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Equal(t, run.Snapshot.RunID.String(), rr.Header().Get(runIDHeader))
		assert.Equal(t,
			"client,available,held,total,locked\n1,1.5,0.0,1.5,false\n2,0.0,0.0,0.0,false\n",
			rr.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("JSONFormat", func(t *testing.T) {
		mockService := new(MockReplayService)
		run := newReplayRun()
		mockService.On("Replay", mock.Anything, mock.Anything).Return(run, nil).Once()

		rr := doReplay(newReplayRouter(mockService, 1<<20), "/replays?format=json", body)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope ReplayEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
		assert.Nil(t, envelope.Error)
		assert.Equal(t, run.Snapshot.RunID.String(), envelope.Data.RunID)
		assert.Equal(t, 3, envelope.Data.Processed)
		assert.Equal(t, 1, envelope.Data.Applied)
		assert.Equal(t, 2, envelope.Data.Skipped["REFERENCE_NOT_FOUND"])
		require.Len(t, envelope.Data.Accounts, 2)
		assert.Equal(t, AccountResponse{Client: 1, Available: "1.5", Held: "0.0", Total: "1.5"}, envelope.Data.Accounts[0])
	})

	t.Run("TableFormat", func(t *testing.T) {
		mockService := new(MockReplayService)
		mockService.On("Replay", mock.Anything, mock.Anything).Return(newReplayRun(), nil).Once()

		rr := doReplay(newReplayRouter(mockService, 1<<20), "/replays?format=table", body)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), "available")
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		mockService := new(MockReplayService)

		rr := doReplay(newReplayRouter(mockService, 1<<20), "/replays?format=xml", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Replay", mock.Anything, mock.Anything)
	})

	t.Run("ParseError", func(t *testing.T) {
		mockService := new(MockReplayService)
		parseErr := &codec.ParseError{Line: 2, Err: shared.ErrMissingAmount}
		mockService.On("Replay", mock.Anything, mock.Anything).Return(nil, parseErr).Once()

		rr := doReplay(newReplayRouter(mockService, 1<<20), "/replays", "type,client,tx,amount\ndeposit,1,1\n")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "line 2")
	})

	t.Run("SinkFailure", func(t *testing.T) {
		mockService := new(MockReplayService)
		sinkErr := ledger.ErrPublishFailed{Sink: "postgres", Err: errors.New("connection reset")}
		mockService.On("Replay", mock.Anything, mock.Anything).Return(newReplayRun(), sinkErr).Once()

		rr := doReplay(newReplayRouter(mockService, 1<<20), "/replays", body)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "SINK_UNAVAILABLE", resp.Error.Code)
	})

	t.Run("UnexpectedError", func(t *testing.T) {
		mockService := new(MockReplayService)
		mockService.On("Replay", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

		rr := doReplay(newReplayRouter(mockService, 1<<20), "/replays", body)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("UploadTooLarge", func(t *testing.T) {
		mockService := new(MockReplayService)
		mockService.On("Replay", mock.Anything, mock.Anything).Return(nil, &http.MaxBytesError{Limit: 8}).Once()

		rr := doReplay(newReplayRouter(mockService, 8), "/replays", body)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})
}
