package ledger

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/primefinance/backend/internal/models"
)

// loanTransitions lists the moves a user or administrator may make. Repaid
// is reached only through MarkLoanRepaid.
var loanTransitions = map[models.LoanStatus][]models.LoanStatus{
	models.LoanStatusPending: {models.LoanStatusApproved, models.LoanStatusRejected},
}

// CanTransition reports whether a loan in state from may move to state to.
func CanTransition(from, to models.LoanStatus) bool {
	for _, next := range loanTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func transition(loan *models.Loan, to models.LoanStatus) error {
	if !CanTransition(loan.Status, to) {
		return &InvalidStateError{LoanID: loan.ID, From: loan.Status, To: to}
	}
	return nil
}

// ApplyForLoan records a pending loan to be disbursed into accountID. No
// balance changes until the loan is approved.
func (l *Ledger) ApplyForLoan(ctx context.Context, amount decimal.Decimal, termMonths int, interestRate float64, accountID string) (*models.Loan, error) {
	userID, err := l.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireAmount("amount", amount); err != nil {
		return nil, err
	}
	if termMonths <= 0 {
		return nil, &InvalidAmountError{Field: "termMonths", Value: strconv.Itoa(termMonths)}
	}
	if !(interestRate >= 0) || math.IsInf(interestRate, 1) {
		return nil, &InvalidAmountError{Field: "interestRate", Value: strconv.FormatFloat(interestRate, 'f', -1, 64)}
	}

	m, err := l.mutate(ctx, "apply_loan", userID, func(b *book) (*Mutation, error) {
		if _, err := b.account(accountID); err != nil {
			return nil, err
		}
		return &Mutation{NewLoan: &models.Loan{
			ID:                   l.newID("loan"),
			UserID:               userID,
			Amount:               amount,
			TermMonths:           termMonths,
			InterestRate:         interestRate,
			Status:               models.LoanStatusPending,
			DisbursedToAccountID: accountID,
			CreatedAt:            l.now(),
		}}, nil
	})
	if err != nil {
		return nil, err
	}

	loan := *m.NewLoan
	l.publish(ctx, models.LedgerEvent{
		Type:       models.EventLoanApplied,
		UserID:     userID,
		EntityID:   loan.ID,
		Amount:     loan.Amount,
		OccurredAt: loan.CreatedAt,
		Details:    models.Metadata{"termMonths": loan.TermMonths, "interestRate": loan.InterestRate},
	})
	return &loan, nil
}

// ApproveLoan moves a pending loan to approved and disburses it.
func (l *Ledger) ApproveLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	userID, err := l.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	m, err := l.mutate(ctx, "approve_loan", userID, func(b *book) (*Mutation, error) {
		loan, err := b.loan(loanID)
		if err != nil {
			return nil, err
		}
		if err := transition(loan, models.LoanStatusApproved); err != nil {
			return nil, err
		}
		acc, err := b.account(loan.DisbursedToAccountID)
		if err != nil {
			return nil, err
		}

		now := l.now()
		approved := *loan
		approved.Status = models.LoanStatusApproved
		approved.ApprovedAt = &now

		credited := *acc
		credited.Balance = acc.Balance.Add(loan.Amount)
		credited.UpdatedAt = now

		tx := l.newTransaction(userID, models.TransactionLoan, loan.Amount,
			fmt.Sprintf("Loan approved (%d mo @ %.1f%%)", loan.TermMonths, loan.InterestRate*100),
			models.Metadata{"loanId": loan.ID, "accountId": acc.ID}, now)

		return &Mutation{Accounts: []models.Account{credited}, Transaction: &tx, UpdatedLoan: &approved}, nil
	})
	if err != nil {
		return nil, err
	}

	loan := *m.UpdatedLoan
	l.publish(ctx, models.LedgerEvent{
		Type:          models.EventLoanApproved,
		UserID:        userID,
		TransactionID: m.Transaction.ID,
		EntityID:      loan.ID,
		Amount:        loan.Amount,
		OccurredAt:    m.Transaction.Date,
		Details:       models.Metadata{"termMonths": loan.TermMonths, "interestRate": loan.InterestRate},
	})
	return &loan, nil
}

// RejectLoan moves a pending loan to rejected. No funds move.
func (l *Ledger) RejectLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	userID, err := l.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	m, err := l.mutate(ctx, "reject_loan", userID, func(b *book) (*Mutation, error) {
		loan, err := b.loan(loanID)
		if err != nil {
			return nil, err
		}
		if err := transition(loan, models.LoanStatusRejected); err != nil {
			return nil, err
		}
		now := l.now()
		rejected := *loan
		rejected.Status = models.LoanStatusRejected
		rejected.RejectedAt = &now
		return &Mutation{UpdatedLoan: &rejected}, nil
	})
	if err != nil {
		return nil, err
	}

	loan := *m.UpdatedLoan
	l.publish(ctx, models.LedgerEvent{
		Type:       models.EventLoanRejected,
		UserID:     userID,
		EntityID:   loan.ID,
		Amount:     loan.Amount,
		OccurredAt: *loan.RejectedAt,
	})
	return &loan, nil
}

// MarkLoanRepaid records the outcome of the external repayment flow. The
// only precondition is that the loan exists; marking a repaid loan again is a
// no-op.
func (l *Ledger) MarkLoanRepaid(ctx context.Context, userID, loanID string) (*models.Loan, error) {
	var current models.Loan
	m, err := l.mutate(ctx, "repay_loan", userID, func(b *book) (*Mutation, error) {
		loan, err := b.loan(loanID)
		if err != nil {
			return nil, err
		}
		current = *loan
		if loan.Status == models.LoanStatusRepaid {
			return nil, nil
		}
		now := l.now()
		repaid := *loan
		repaid.Status = models.LoanStatusRepaid
		repaid.RepaidAt = &now
		return &Mutation{UpdatedLoan: &repaid}, nil
	})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return &current, nil
	}

	loan := *m.UpdatedLoan
	l.publish(ctx, models.LedgerEvent{
		Type:       models.EventLoanRepaid,
		UserID:     userID,
		EntityID:   loan.ID,
		Amount:     loan.Amount,
		OccurredAt: *loan.RepaidAt,
	})
	return &loan, nil
}
