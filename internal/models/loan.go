package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is a state in the loan lifecycle.
type LoanStatus string

// Loan status values
const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusApproved LoanStatus = "approved"
	LoanStatusRejected LoanStatus = "rejected"
	LoanStatusRepaid   LoanStatus = "repaid"
)

// Loan is a request for funds disbursed into one of the user's accounts.
type Loan struct {
	ID                   string          `json:"id" db:"id"`
	UserID               string          `json:"userId" db:"user_id"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	TermMonths           int             `json:"termMonths" db:"term_months"`
	InterestRate         float64         `json:"interestRate" db:"interest_rate"`
	Status               LoanStatus      `json:"status" db:"status"`
	DisbursedToAccountID string          `json:"disbursedToAccountId" db:"disbursed_to_account_id"`
	CreatedAt            time.Time       `json:"createdAt" db:"created_at"`
	ApprovedAt           *time.Time      `json:"approvedAt,omitempty" db:"approved_at"`
	RejectedAt           *time.Time      `json:"rejectedAt,omitempty" db:"rejected_at"`
	RepaidAt             *time.Time      `json:"repaidAt,omitempty" db:"repaid_at"`
}
