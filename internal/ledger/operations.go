package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/primefinance/backend/internal/calculator"
	"github.com/primefinance/backend/internal/models"
)

// ErrAccountName is returned when opening an account without a name.
var ErrAccountName = errors.New("account name is required")

// OpenAccount creates a zero-balance account for the signed-in user.
func (l *Ledger) OpenAccount(ctx context.Context, name string) (*models.Account, error) {
	userID, err := l.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrAccountName
	}

	m, err := l.mutate(ctx, "open_account", userID, func(b *book) (*Mutation, error) {
		now := l.now()
		return &Mutation{OpenedAccount: &models.Account{
			ID:        l.newID("acc"),
			UserID:    userID,
			Name:      name,
			Number:    maskedNumber(),
			Balance:   decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}}, nil
	})
	if err != nil {
		return nil, err
	}

	acc := *m.OpenedAccount
	l.publish(ctx, models.LedgerEvent{
		Type:       models.EventAccountOpened,
		UserID:     userID,
		EntityID:   acc.ID,
		Amount:     decimal.Zero,
		OccurredAt: acc.CreatedAt,
		Details:    models.Metadata{"name": acc.Name},
	})
	return &acc, nil
}

// Transfer moves amount between two of the signed-in user's accounts.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (*models.Transaction, error) {
	userID, err := l.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireAmount("amount", amount); err != nil {
		return nil, err
	}
	if fromID == toID {
		return nil, ErrSameAccount
	}

	m, err := l.mutate(ctx, "transfer", userID, func(b *book) (*Mutation, error) {
		from, err := b.account(fromID)
		if err != nil {
			return nil, err
		}
		to, err := b.account(toID)
		if err != nil {
			return nil, err
		}
		if from.Balance.LessThan(amount) {
			return nil, &InsufficientFundsError{AccountID: from.ID, Balance: from.Balance, Requested: amount}
		}

		now := l.now()
		debited, credited := *from, *to
		debited.Balance = from.Balance.Sub(amount)
		debited.UpdatedAt = now
		credited.Balance = to.Balance.Add(amount)
		credited.UpdatedAt = now

		tx := l.newTransaction(userID, models.TransactionTransfer, amount,
			fmt.Sprintf("Transfer from %s to %s", from.Name, to.Name),
			models.Metadata{"fromAccountId": from.ID, "toAccountId": to.ID}, now)

		return &Mutation{Accounts: []models.Account{debited, credited}, Transaction: &tx}, nil
	})
	if err != nil {
		return nil, err
	}

	l.publish(ctx, models.LedgerEvent{
		Type:          models.EventTransferCompleted,
		UserID:        userID,
		TransactionID: m.Transaction.ID,
		Amount:        amount,
		OccurredAt:    m.Transaction.Date,
		Details:       m.Transaction.Metadata.Clone(),
	})
	return copyTransaction(*m.Transaction), nil
}

// Deposit credits an external inflow to one of the signed-in user's accounts.
// An empty description is recorded as "Deposit".
func (l *Ledger) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	userID, err := l.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireAmount("amount", amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		description = "Deposit"
	}

	m, err := l.mutate(ctx, "deposit", userID, func(b *book) (*Mutation, error) {
		acc, err := b.account(accountID)
		if err != nil {
			return nil, err
		}

		now := l.now()
		credited := *acc
		credited.Balance = acc.Balance.Add(amount)
		credited.UpdatedAt = now

		tx := l.newTransaction(userID, models.TransactionDeposit, amount, description,
			models.Metadata{"accountId": acc.ID}, now)

		return &Mutation{Accounts: []models.Account{credited}, Transaction: &tx}, nil
	})
	if err != nil {
		return nil, err
	}

	l.publish(ctx, models.LedgerEvent{
		Type:          models.EventDepositCompleted,
		UserID:        userID,
		TransactionID: m.Transaction.ID,
		EntityID:      accountID,
		Amount:        amount,
		OccurredAt:    m.Transaction.Date,
	})
	return copyTransaction(*m.Transaction), nil
}

// InvestInPlan locks amount from fromAccountID into planID. The expected
// return is computed once here and never recomputed.
func (l *Ledger) InvestInPlan(ctx context.Context, planID string, amount decimal.Decimal, fromAccountID string) (*models.Investment, error) {
	userID, err := l.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := l.Plan(planID)
	if err != nil {
		return nil, err
	}
	if err := requireAmount("amount", amount); err != nil {
		return nil, err
	}

	m, err := l.mutate(ctx, "invest", userID, func(b *book) (*Mutation, error) {
		from, err := b.account(fromAccountID)
		if err != nil {
			return nil, err
		}
		if amount.LessThan(plan.MinAmount) || amount.GreaterThan(plan.MaxAmount) {
			return nil, &AmountOutOfRangeError{PlanID: plan.ID, Amount: amount, Min: plan.MinAmount, Max: plan.MaxAmount}
		}
		if from.Balance.LessThan(amount) {
			return nil, &InsufficientFundsError{AccountID: from.ID, Balance: from.Balance, Requested: amount}
		}

		now := l.now()
		estimate := calculator.EstimatePlanReturn(plan, amount.InexactFloat64())
		inv := models.Investment{
			ID:             l.newID("inv"),
			UserID:         userID,
			PlanID:         plan.ID,
			FromAccountID:  from.ID,
			Amount:         amount,
			StartDate:      now,
			EndDate:        now.AddDate(0, 0, plan.DurationDays),
			Status:         models.InvestmentStatusActive,
			ExpectedReturn: decimal.NewFromFloat(estimate.ExpectedReturn),
		}

		debited := *from
		debited.Balance = from.Balance.Sub(amount)
		debited.UpdatedAt = now

		tx := l.newTransaction(userID, models.TransactionInvestment, amount.Neg(),
			fmt.Sprintf("Invested in %s", plan.Name),
			models.Metadata{"investmentId": inv.ID, "planId": plan.ID, "accountId": from.ID}, now)

		return &Mutation{Accounts: []models.Account{debited}, Transaction: &tx, NewInvestment: &inv}, nil
	})
	if err != nil {
		return nil, err
	}

	inv := *m.NewInvestment
	l.publish(ctx, models.LedgerEvent{
		Type:          models.EventInvestmentCreated,
		UserID:        userID,
		TransactionID: m.Transaction.ID,
		EntityID:      inv.ID,
		Amount:        inv.Amount,
		OccurredAt:    inv.StartDate,
		Details:       models.Metadata{"planId": plan.ID, "expectedReturn": inv.ExpectedReturn.StringFixed(2), "endDate": inv.EndDate},
	})
	return &inv, nil
}

// MatureInvestments completes userID's active investments whose end date is
// at or before asOf, crediting principal plus expected return back to the
// funding account. Each maturity is committed on its own; the investments
// matured before an error are returned alongside it.
func (l *Ledger) MatureInvestments(ctx context.Context, userID string, asOf time.Time) ([]models.Investment, error) {
	b, err := l.bookFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	var due []string
	for _, id := range b.investmentOrder {
		inv := b.investments[id]
		if inv.Status == models.InvestmentStatusActive && !inv.EndDate.After(asOf) {
			due = append(due, id)
		}
	}
	b.mu.RUnlock()

	var matured []models.Investment
	for _, id := range due {
		inv, err := l.matureInvestment(ctx, userID, id, asOf)
		if err != nil {
			return matured, err
		}
		if inv != nil {
			matured = append(matured, *inv)
		}
	}
	return matured, nil
}

func (l *Ledger) matureInvestment(ctx context.Context, userID, investmentID string, asOf time.Time) (*models.Investment, error) {
	m, err := l.mutate(ctx, "mature_investment", userID, func(b *book) (*Mutation, error) {
		inv, ok := b.investments[investmentID]
		if !ok {
			return nil, &NotFoundError{Entity: "investment", ID: investmentID}
		}
		if inv.Status != models.InvestmentStatusActive || inv.EndDate.After(asOf) {
			return nil, nil
		}
		acc, err := b.account(inv.FromAccountID)
		if err != nil {
			return nil, err
		}

		now := l.now()
		payout := inv.MaturityAmount()

		completed := *inv
		completed.Status = models.InvestmentStatusCompleted
		completed.CompletedAt = &now

		credited := *acc
		credited.Balance = acc.Balance.Add(payout)
		credited.UpdatedAt = now

		name := inv.PlanID
		if plan, ok := l.plans[inv.PlanID]; ok {
			name = plan.Name
		}
		tx := l.newTransaction(userID, models.TransactionInvestment, payout,
			fmt.Sprintf("Matured %s", name),
			models.Metadata{"investmentId": inv.ID, "planId": inv.PlanID, "accountId": acc.ID, "principal": inv.Amount.String()}, now)

		return &Mutation{Accounts: []models.Account{credited}, Transaction: &tx, UpdatedInvestment: &completed}, nil
	})
	if err != nil || m == nil {
		return nil, err
	}

	inv := *m.UpdatedInvestment
	l.publish(ctx, models.LedgerEvent{
		Type:          models.EventInvestmentMatured,
		UserID:        userID,
		TransactionID: m.Transaction.ID,
		EntityID:      inv.ID,
		Amount:        m.Transaction.Amount,
		OccurredAt:    m.Transaction.Date,
		Details:       models.Metadata{"planId": inv.PlanID},
	})
	return &inv, nil
}

// MatureDue matures due investments for every user the store reports as
// having any. It returns how many investments matured.
func (l *Ledger) MatureDue(ctx context.Context, asOf time.Time) (int, error) {
	users, err := l.store.UsersWithDueInvestments(ctx, asOf)
	if err != nil {
		return 0, &PersistenceError{Op: "list due investments", Err: err}
	}

	var (
		count int
		errs  []error
	)
	for _, userID := range users {
		matured, err := l.MatureInvestments(ctx, userID, asOf)
		count += len(matured)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
		}
	}
	return count, errors.Join(errs...)
}
