package ledger

import (
	"context"
	"time"

	"github.com/primefinance/backend/internal/models"
)

// Store is the persistence collaborator. Commit must apply a Mutation
// atomically: either every change in it is durable or none is.
type Store interface {
	LoadBook(ctx context.Context, userID string) (*Snapshot, error)
	ListPlans(ctx context.Context) ([]models.InvestmentPlan, error)
	Commit(ctx context.Context, userID string, m *Mutation) error
	UsersWithDueInvestments(ctx context.Context, asOf time.Time) ([]string, error)
}

// Snapshot is a user's persisted ledger state.
type Snapshot struct {
	Accounts     []models.Account
	Transactions []models.Transaction // oldest first
	Loans        []models.Loan
	Investments  []models.Investment
}

// Mutation is the complete set of changes produced by one ledger operation.
// Accounts holds post-operation account rows; Version is the value the row
// had when it was read.
type Mutation struct {
	Op                string
	OpenedAccount     *models.Account
	Accounts          []models.Account
	Transaction       *models.Transaction
	NewLoan           *models.Loan
	UpdatedLoan       *models.Loan
	NewInvestment     *models.Investment
	UpdatedInvestment *models.Investment
}

// EventPublisher receives an event after each committed mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LedgerEvent) error
}

// Auditor records committed and failed ledger operations.
type Auditor interface {
	LogMutation(userID, op, transactionID string, m *Mutation)
	LogError(userID, op string, err error)
}
