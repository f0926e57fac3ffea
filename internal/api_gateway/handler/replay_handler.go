package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accounts-replay-ledger/internal/api_gateway/middleware"
	"github.com/accounts-replay-ledger/internal/api_gateway/service"
	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/domain/shared"
	"github.com/accounts-replay-ledger/internal/platform/codec"
	"github.com/accounts-replay-ledger/internal/report"
)

// ReplayHandler handles HTTP requests for replay runs
type ReplayHandler struct {
	replayService  service.ReplayService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewReplayHandler creates a new replay handler
func NewReplayHandler(logger *slog.Logger, replayService service.ReplayService, maxUploadBytes int64) *ReplayHandler {
	return &ReplayHandler{
		replayService:  replayService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Create replays the transaction CSV in the request body and answers with the
// balance report. ?format selects csv (default), table or json.
func (h *ReplayHandler) Create(c *gin.Context) {
	logger := h.logger.With("correlation_id", middleware.GetCorrelationID(c))

	format := shared.ReportFormat(c.DefaultQuery("format", string(shared.ReportFormatCSV)))
	switch format {
	case shared.ReportFormatCSV, shared.ReportFormatTable, shared.ReportFormatJSON:
	default:
		RespondBadRequest(c, "Unsupported report format: "+string(format))
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	run, err := h.replayService.Replay(c.Request.Context(), body)
	if err != nil {
		var (
			parseErr    *codec.ParseError
			maxBytesErr *http.MaxBytesError
		)
		switch {
		case errors.As(err, &maxBytesErr):
			logger.Warn("Transaction upload too large", "limit", maxBytesErr.Limit)
			RespondPayloadTooLarge(c, "Transaction CSV exceeds the upload limit")
		case errors.As(err, &parseErr):
			logger.Warn("Rejected malformed transaction CSV", "line", parseErr.Line, "error", parseErr.Err)
			RespondBadRequest(c, "Invalid transaction CSV: "+parseErr.Error())
		case errors.Is(err, ledger.ErrPublishFailed{}):
			logger.Error("Failed to export replay snapshot", "error", err)
			RespondBadGateway(c, "Failed to export balance snapshot")
		default:
			logger.Error("Replay failed", "error", err)
			RespondInternalError(c)
		}
		return
	}

	c.Header(runIDHeader, run.Snapshot.RunID.String())

	switch format {
	case shared.ReportFormatJSON:
		RespondOK(c, toReplayResponse(run))
	default:
		var buf bytes.Buffer
		if err := report.Write(&buf, format, run.Result.Accounts); err != nil {
			logger.Error("Failed to render balance report", "format", format, "error", err)
			RespondInternalError(c)
			return
		}
		contentType := "text/csv; charset=utf-8"
		if format == shared.ReportFormatTable {
			contentType = "text/plain; charset=utf-8"
		}
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}
