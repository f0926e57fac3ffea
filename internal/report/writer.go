package report

import (
	"fmt"
	"io"

	"github.com/accounts-replay-ledger/internal/domain/account"
	"github.com/accounts-replay-ledger/internal/domain/shared"
)

// Write renders accounts in the requested format
func Write(w io.Writer, format shared.ReportFormat, accounts []account.Account) error {
	switch format {
	case shared.ReportFormatCSV, "":
		return WriteCSV(w, accounts)
	case shared.ReportFormatTable:
		return WriteTable(w, accounts)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}
