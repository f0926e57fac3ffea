// Command replay reads a transaction CSV, replays it and prints the final
// balance of every client to stdout.
//
//	replay transactions.csv > accounts.csv
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/accounts-replay-ledger/internal/api_gateway/service"
	"github.com/accounts-replay-ledger/internal/config"
	"github.com/accounts-replay-ledger/internal/domain/ledger"
	"github.com/accounts-replay-ledger/internal/logger"
	"github.com/accounts-replay-ledger/internal/report"
	"github.com/accounts-replay-ledger/internal/transaction_processor/components"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "Path for CSV file is needed")
		return 1
	}

	cfg, err := config.LoadConfig("replay")
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log := logger.NewLoggerWithWriter(cfg, stderr)

	file, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "Failed to open transactions file: %v\n", err)
		return 1
	}
	defer file.Close()

	sinks, err := components.CreateSinks(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize snapshot sinks: %v\n", err)
		return 1
	}
	defer func() {
		if err := sinks.Close(context.Background()); err != nil {
			log.Error("Error closing snapshot sinks", "error", err)
		}
	}()

	replayService := service.NewReplayService(log, components.CreateReplayService(log), sinks.Publisher)

	code := 0
	runResult, err := replayService.Replay(ctx, file)
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrPublishFailed{}) && runResult != nil:
		// Export failures still print the report
		fmt.Fprintf(stderr, "Failed to export balances: %v\n", err)
		code = 1
	default:
		fmt.Fprintf(stderr, "Failed to replay %s: %v\n", args[0], err)
		return 1
	}

	if err := report.Write(stdout, cfg.Report.Format, runResult.Result.Accounts); err != nil {
		fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
		return 1
	}
	return code
}
