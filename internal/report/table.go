package report

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/accounts-replay-ledger/internal/domain/account"
)

// WriteTable renders the report as an aligned text table
func WriteTable(w io.Writer, accounts []account.Account) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(Rows(accounts))
	table.Render()
	return nil
}
