package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger event types
const (
	EventTransferCompleted = "transfer.completed"
	EventDepositCompleted  = "deposit.completed"
	EventLoanApplied       = "loan.applied"
	EventLoanApproved      = "loan.approved"
	EventLoanRejected      = "loan.rejected"
	EventLoanRepaid        = "loan.repaid"
	EventInvestmentCreated = "investment.created"
	EventInvestmentMatured = "investment.matured"
	EventAccountOpened     = "account.opened"
)

// LedgerEvent is published after a ledger mutation has been committed.
type LedgerEvent struct {
	Type          string          `json:"type"`
	UserID        string          `json:"user_id"`
	TransactionID string          `json:"transaction_id,omitempty"`
	EntityID      string          `json:"entity_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Details       Metadata        `json:"details,omitempty"`
}
