package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment status values
const (
	InvestmentStatusActive    = "active"
	InvestmentStatusCompleted = "completed"
)

// Investment is principal locked into a plan until EndDate.
type Investment struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"userId" db:"user_id"`
	PlanID         string          `json:"planId" db:"plan_id"`
	FromAccountID  string          `json:"fromAccountId" db:"from_account_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	StartDate      time.Time       `json:"startDate" db:"start_date"`
	EndDate        time.Time       `json:"endDate" db:"end_date"`
	Status         string          `json:"status" db:"status"`
	ExpectedReturn decimal.Decimal `json:"expectedReturn" db:"expected_return"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
}

// MaturityAmount is the principal plus the expected return rounded to cents.
func (i Investment) MaturityAmount() decimal.Decimal {
	return i.Amount.Add(i.ExpectedReturn.Round(2))
}
