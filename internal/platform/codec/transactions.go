// Package codec decodes transaction CSV streams into replay records.
package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/accounts-replay-ledger/internal/domain/shared"
)

// Column positions of the transaction CSV: type, client, tx, amount
const (
	columnType = iota
	columnClient
	columnTx
	columnAmount
)

const minColumns = columnAmount

// ErrTooFewColumns is returned for rows without type, client and tx
var ErrTooFewColumns = errors.New("expected at least type, client and tx columns")

// ParseError reports the input line a record failed on
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseTransactions reads every record of a transaction CSV. The first row is
// the header. Rows may omit the amount column and fields are trimmed. The first
// malformed row aborts the parse.
func ParseTransactions(r io.Reader) ([]shared.TransactionRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	records := make([]shared.TransactionRecord, 0)
	header := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, fmt.Errorf("failed to read transactions: %w", err)
		}
		if header {
			header = false
			continue
		}

		line, _ := cr.FieldPos(0)
		record, err := parseRow(row)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		records = append(records, record)
	}

	return records, nil
}

func parseRow(row []string) (shared.TransactionRecord, error) {
	if len(row) < minColumns {
		return shared.TransactionRecord{}, ErrTooFewColumns
	}

	txType, err := shared.ParseTransactionType(row[columnType])
	if err != nil {
		return shared.TransactionRecord{}, fmt.Errorf("%w: %q", err, strings.TrimSpace(row[columnType]))
	}

	clientID, err := parseID("client", row[columnClient])
	if err != nil {
		return shared.TransactionRecord{}, err
	}

	txID, err := parseID("tx", row[columnTx])
	if err != nil {
		return shared.TransactionRecord{}, err
	}

	amount := decimal.Zero
	rawAmount := ""
	if len(row) > columnAmount {
		rawAmount = strings.TrimSpace(row[columnAmount])
	}
	switch {
	case rawAmount != "" && txType.RequiresAmount():
		amount, err = decimal.NewFromString(rawAmount)
		if err != nil {
			return shared.TransactionRecord{}, fmt.Errorf("invalid amount %q: %w", rawAmount, err)
		}
	case txType.RequiresAmount():
		return shared.TransactionRecord{}, shared.ErrMissingAmount
	}

	return shared.NewTransactionRecord(txType, clientID, txID, amount), nil
}

func parseID(column, raw string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", column, strings.TrimSpace(raw), err)
	}
	return uint32(id), nil
}
