package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/primefinance/backend/internal/models"
)

// ErrUnauthenticated is returned when a mutating operation runs without a
// signed-in user in its context.
var ErrUnauthenticated = errors.New("no authenticated user")

// ErrSameAccount is returned for a transfer whose source and destination match.
var ErrSameAccount = errors.New("source and destination accounts must differ")

// NotFoundError is returned when a referenced account, plan, loan or
// investment does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// InvalidAmountError is returned for non-positive amounts and for loan terms
// or rates outside their allowed range.
type InvalidAmountError struct {
	Field string
	Value string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Value)
}

// AmountOutOfRangeError is returned when an investment falls outside the
// plan's minimum and maximum.
type AmountOutOfRangeError struct {
	PlanID string
	Amount decimal.Decimal
	Min    decimal.Decimal
	Max    decimal.Decimal
}

func (e *AmountOutOfRangeError) Error() string {
	if e.Amount.LessThan(e.Min) {
		return fmt.Sprintf("amount %s is below the minimum of %s for plan %s", e.Amount, e.Min, e.PlanID)
	}
	return fmt.Sprintf("amount %s exceeds the maximum of %s for plan %s", e.Amount, e.Max, e.PlanID)
}

// InsufficientFundsError is returned when a debit would drive a balance
// below zero.
type InsufficientFundsError struct {
	AccountID string
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance in account %s: have %s, need %s", e.AccountID, e.Balance, e.Requested)
}

// InvalidStateError is returned for an illegal loan lifecycle transition.
type InvalidStateError struct {
	LoanID string
	From   models.LoanStatus
	To     models.LoanStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("loan %s cannot move from %s to %s", e.LoanID, e.From, e.To)
}

// PersistenceError wraps a failure of the external store. The in-memory
// ledger is left as it was before the operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
