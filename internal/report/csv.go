package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/accounts-replay-ledger/internal/domain/account"
)

// ErrMalformedReport is returned when a CSV report cannot be decoded
var ErrMalformedReport = errors.New("malformed balance report")

// WriteCSV writes the header followed by one row per account
func WriteCSV(w io.Writer, accounts []account.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	if err := cw.WriteAll(Rows(accounts)); err != nil {
		return fmt.Errorf("failed to write report rows: %w", err)
	}
	return nil
}

// ReadCSV decodes a report produced by WriteCSV back into accounts
func ReadCSV(r io.Reader) ([]account.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	if len(records) == 0 {
		return []account.Account{}, nil
	}

	accounts := make([]account.Account, 0, len(records)-1)
	for i, row := range records[1:] {
		acc, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedReport, i+2, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func parseRow(row []string) (account.Account, error) {
	clientID, err := strconv.ParseUint(strings.TrimSpace(row[0]), 10, 32)
	if err != nil {
		return account.Account{}, fmt.Errorf("invalid client %q", row[0])
	}

	amounts := make([]decimal.Decimal, 3)
	for i, raw := range row[1:4] {
		amounts[i], err = decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return account.Account{}, fmt.Errorf("invalid %s %q", Columns[i+1], raw)
		}
	}

	locked, err := strconv.ParseBool(strings.TrimSpace(row[4]))
	if err != nil {
		return account.Account{}, fmt.Errorf("invalid locked %q", row[4])
	}

	return account.Account{
		ClientID:  uint32(clientID),
		Available: amounts[0],
		Held:      amounts[1],
		Total:     amounts[2],
		Locked:    locked,
	}, nil
}
