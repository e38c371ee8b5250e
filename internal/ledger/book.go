package ledger

import (
	"sync"

	"github.com/primefinance/backend/internal/models"
)

// book is one user's in-memory ledger state. writeMu serialises mutations so
// that validation and apply see the same state; mu lets readers continue
// while a mutation is being persisted.
type book struct {
	userID  string
	writeMu sync.Mutex

	mu              sync.RWMutex
	accounts        map[string]*models.Account
	accountOrder    []string
	transactions    []models.Transaction // oldest first
	loans           map[string]*models.Loan
	loanOrder       []string
	investments     map[string]*models.Investment
	investmentOrder []string
}

func newBook(userID string, snap *Snapshot) *book {
	b := &book{
		userID:      userID,
		accounts:    make(map[string]*models.Account),
		loans:       make(map[string]*models.Loan),
		investments: make(map[string]*models.Investment),
	}
	if snap == nil {
		return b
	}
	for _, a := range snap.Accounts {
		b.putAccount(a)
	}
	for _, tx := range snap.Transactions {
		tx.Metadata = tx.Metadata.Clone()
		b.transactions = append(b.transactions, tx)
	}
	for _, loan := range snap.Loans {
		b.putLoan(loan)
	}
	for _, inv := range snap.Investments {
		b.putInvestment(inv)
	}
	return b
}

func (b *book) putAccount(a models.Account) {
	if _, ok := b.accounts[a.ID]; !ok {
		b.accountOrder = append(b.accountOrder, a.ID)
	}
	b.accounts[a.ID] = &a
}

func (b *book) putLoan(loan models.Loan) {
	if _, ok := b.loans[loan.ID]; !ok {
		b.loanOrder = append(b.loanOrder, loan.ID)
	}
	b.loans[loan.ID] = &loan
}

func (b *book) putInvestment(inv models.Investment) {
	if _, ok := b.investments[inv.ID]; !ok {
		b.investmentOrder = append(b.investmentOrder, inv.ID)
	}
	b.investments[inv.ID] = &inv
}

func (b *book) account(id string) (*models.Account, error) {
	a, ok := b.accounts[id]
	if !ok {
		return nil, &NotFoundError{Entity: "account", ID: id}
	}
	return a, nil
}

func (b *book) loan(id string) (*models.Loan, error) {
	loan, ok := b.loans[id]
	if !ok {
		return nil, &NotFoundError{Entity: "loan", ID: id}
	}
	return loan, nil
}

// apply installs a committed mutation. Callers hold mu for writing.
func (b *book) apply(m *Mutation) {
	if m.OpenedAccount != nil {
		b.putAccount(*m.OpenedAccount)
	}
	for _, a := range m.Accounts {
		a.Version++
		b.putAccount(a)
	}
	if m.Transaction != nil {
		tx := *m.Transaction
		tx.Metadata = tx.Metadata.Clone()
		b.transactions = append(b.transactions, tx)
	}
	if m.NewLoan != nil {
		b.putLoan(*m.NewLoan)
	}
	if m.UpdatedLoan != nil {
		b.putLoan(*m.UpdatedLoan)
	}
	if m.NewInvestment != nil {
		b.putInvestment(*m.NewInvestment)
	}
	if m.UpdatedInvestment != nil {
		b.putInvestment(*m.UpdatedInvestment)
	}
}
