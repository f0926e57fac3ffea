// Package report renders replay results as balance reports and reads them back.
package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/accounts-replay-ledger/internal/domain/account"
)

// Columns is the header of every balance report
var Columns = []string{"client", "available", "held", "total", "locked"}

// Rows converts accounts into report rows, preserving their order
func Rows(accounts []account.Account) [][]string {
	rows := make([][]string, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(acc.ClientID), 10),
			FormatAmount(acc.Available),
			FormatAmount(acc.Held),
			FormatAmount(acc.Total),
			strconv.FormatBool(acc.Locked),
		})
	}
	return rows
}

// FormatAmount renders an amount without rounding. Integral values keep a
// trailing ".0" so 5 is written as 5.0.
func FormatAmount(amount decimal.Decimal) string {
	s := amount.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
