package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger transaction.
type TransactionType string

// Transaction types
const (
	TransactionTransfer   TransactionType = "transfer"
	TransactionInvestment TransactionType = "investment"
	TransactionLoan       TransactionType = "loan"
	TransactionDeposit    TransactionType = "deposit"
)

// Transaction status values
const (
	TransactionStatusCompleted = "completed"
)

// Transaction is an append-only ledger log record. Amount is signed from the
// user's point of view: investment locks are negative, inflows are positive and
// internal transfers carry the moved amount.
type Transaction struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"userId" db:"user_id"`
	Type        TransactionType `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Date        time.Time       `json:"date" db:"created_at"`
	Status      string          `json:"status" db:"status"`
	Description string          `json:"description" db:"description"`
	Metadata    Metadata        `json:"meta,omitempty" db:"metadata"`
}

// ParseTransactionType validates a transaction type filter value.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch t := TransactionType(s); t {
	case TransactionTransfer, TransactionInvestment, TransactionLoan, TransactionDeposit:
		return t, true
	}
	return "", false
}
