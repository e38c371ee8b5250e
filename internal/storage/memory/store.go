// Package memory is a process-local ledger.Store used by tests, the CLI and
// single-node deployments without Postgres.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/primefinance/backend/internal/ledger"
	"github.com/primefinance/backend/internal/models"
)

// ErrVersionConflict is returned when a committed account row was changed
// since it was read.
var ErrVersionConflict = errors.New("optimistic lock failed")

type userData struct {
	accounts     map[string]models.Account
	accountOrder []string
	transactions []models.Transaction
	loans        map[string]models.Loan
	loanOrder    []string
	investments  map[string]models.Investment
	invOrder     []string
}

func newUserData() *userData {
	return &userData{
		accounts:    make(map[string]models.Account),
		loans:       make(map[string]models.Loan),
		investments: make(map[string]models.Investment),
	}
}

// Store keeps every user's rows in maps guarded by a single lock.
type Store struct {
	mu    sync.RWMutex
	plans []models.InvestmentPlan
	users map[string]*userData
}

// NewStore returns an empty store serving the given plan table.
func NewStore(plans []models.InvestmentPlan) *Store {
	return &Store{
		plans: slices.Clone(plans),
		users: make(map[string]*userData),
	}
}

func (s *Store) LoadBook(ctx context.Context, userID string) (*ledger.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &ledger.Snapshot{}
	u, ok := s.users[userID]
	if !ok {
		return snap, nil
	}
	for _, id := range u.accountOrder {
		snap.Accounts = append(snap.Accounts, u.accounts[id])
	}
	for _, tx := range u.transactions {
		tx.Metadata = tx.Metadata.Clone()
		snap.Transactions = append(snap.Transactions, tx)
	}
	for _, id := range u.loanOrder {
		snap.Loans = append(snap.Loans, u.loans[id])
	}
	for _, id := range u.invOrder {
		snap.Investments = append(snap.Investments, u.investments[id])
	}
	return snap, nil
}

func (s *Store) ListPlans(ctx context.Context) ([]models.InvestmentPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.plans), nil
}

// Commit validates every account version before writing anything, so a
// conflicting mutation leaves the store unchanged.
func (s *Store) Commit(ctx context.Context, userID string, m *ledger.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		u = newUserData()
	}

	if m.OpenedAccount != nil {
		if _, exists := u.accounts[m.OpenedAccount.ID]; exists {
			return fmt.Errorf("account %s already exists", m.OpenedAccount.ID)
		}
	}
	for _, a := range m.Accounts {
		cur, exists := u.accounts[a.ID]
		if !exists {
			return fmt.Errorf("account %s: %w", a.ID, ErrVersionConflict)
		}
		if cur.Version != a.Version {
			return fmt.Errorf("account %s at version %d, read %d: %w", a.ID, cur.Version, a.Version, ErrVersionConflict)
		}
	}
	if m.UpdatedLoan != nil {
		if _, exists := u.loans[m.UpdatedLoan.ID]; !exists {
			return fmt.Errorf("loan %s not found", m.UpdatedLoan.ID)
		}
	}
	if m.UpdatedInvestment != nil {
		if _, exists := u.investments[m.UpdatedInvestment.ID]; !exists {
			return fmt.Errorf("investment %s not found", m.UpdatedInvestment.ID)
		}
	}

	s.users[userID] = u
	if m.OpenedAccount != nil {
		u.accounts[m.OpenedAccount.ID] = *m.OpenedAccount
		u.accountOrder = append(u.accountOrder, m.OpenedAccount.ID)
	}
	for _, a := range m.Accounts {
		a.Version++
		u.accounts[a.ID] = a
	}
	if m.Transaction != nil {
		tx := *m.Transaction
		tx.Metadata = tx.Metadata.Clone()
		u.transactions = append(u.transactions, tx)
	}
	if m.NewLoan != nil {
		u.loans[m.NewLoan.ID] = *m.NewLoan
		u.loanOrder = append(u.loanOrder, m.NewLoan.ID)
	}
	if m.UpdatedLoan != nil {
		u.loans[m.UpdatedLoan.ID] = *m.UpdatedLoan
	}
	if m.NewInvestment != nil {
		u.investments[m.NewInvestment.ID] = *m.NewInvestment
		u.invOrder = append(u.invOrder, m.NewInvestment.ID)
	}
	if m.UpdatedInvestment != nil {
		u.investments[m.UpdatedInvestment.ID] = *m.UpdatedInvestment
	}
	return nil
}

func (s *Store) UsersWithDueInvestments(ctx context.Context, asOf time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for userID, u := range s.users {
		for _, inv := range u.investments {
			if inv.Status == models.InvestmentStatusActive && !inv.EndDate.After(asOf) {
				out = append(out, userID)
				break
			}
		}
	}
	slices.Sort(out)
	return out, nil
}
