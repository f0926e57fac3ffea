package shared

import "strings"

// TransactionType defines the kinds of records a replay understands
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeDispute    TransactionType = "dispute"
	TransactionTypeResolve    TransactionType = "resolve"
	TransactionTypeChargeback TransactionType = "chargeback"
)

// ParseTransactionType maps the textual type column onto a TransactionType.
// Matching ignores case and surrounding whitespace.
func ParseTransactionType(raw string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(raw))); t {
	case TransactionTypeDeposit,
		TransactionTypeWithdrawal,
		TransactionTypeDispute,
		TransactionTypeResolve,
		TransactionTypeChargeback:
		return t, nil
	default:
		return "", ErrInvalidTransactionType
	}
}

// IsDisputeFamily reports whether the type references an earlier deposit
// instead of carrying its own amount.
func (t TransactionType) IsDisputeFamily() bool {
	switch t {
	case TransactionTypeDispute, TransactionTypeResolve, TransactionTypeChargeback:
		return true
	default:
		return false
	}
}

// RequiresAmount reports whether the amount column must be present
func (t TransactionType) RequiresAmount() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// FailureReason names why a record was absorbed as a no-op during replay
type FailureReason string

const (
	FailureReasonAccountLocked     FailureReason = "ACCOUNT_LOCKED"
	FailureReasonReferenceNotFound FailureReason = "REFERENCE_NOT_FOUND"
	FailureReasonInsufficientFunds FailureReason = "INSUFFICIENT_FUNDS"
)

// ReportFormat defines how a balance report is rendered
type ReportFormat string

const (
	ReportFormatCSV   ReportFormat = "csv"
	ReportFormatTable ReportFormat = "table"
	ReportFormatJSON  ReportFormat = "json"
)
