// Package ledger owns users' accounts, balances, loans, investments and the
// append-only transaction log.
//
// Every mutating operation follows the same pipeline: validate against a
// consistent read of the user's book, persist the resulting Mutation through
// the Store, and only then apply it in memory as a single step. A failed
// validation or a failed commit leaves the book untouched.
//
// Funds enter the ledger only through deposits, loan approvals and investment
// maturities. Transfers are zero-sum and investments lock funds by debiting the
// source account without an offsetting credit.
package ledger

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/primefinance/backend/internal/auth"
	"github.com/primefinance/backend/internal/models"
)

// Ledger is the ledger engine. It is safe for concurrent use; mutations on
// the same user's book are serialised.
type Ledger struct {
	store     Store
	plans     map[string]models.InvestmentPlan
	planOrder []string
	publisher EventPublisher
	audit     Auditor
	log       logrus.FieldLogger
	now       func() time.Time
	newID     func(prefix string) string

	mu    sync.Mutex
	books map[string]*book
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides how record ids are generated.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// WithPublisher sets the publisher notified after each commit.
func WithPublisher(p EventPublisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithAuditor sets the audit trail writer.
func WithAuditor(a Auditor) Option {
	return func(l *Ledger) { l.audit = a }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Ledger) { l.log = log }
}

// New creates a Ledger over store with a fixed plan table.
func New(store Store, plans []models.InvestmentPlan, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		plans: make(map[string]models.InvestmentPlan, len(plans)),
		log:   logrus.StandardLogger(),
		now:   time.Now,
		newID: func(prefix string) string {
			return prefix + "_" + uuid.NewString()
		},
		books: make(map[string]*book),
	}
	for _, p := range plans {
		if _, dup := l.plans[p.ID]; !dup {
			l.planOrder = append(l.planOrder, p.ID)
		}
		l.plans[p.ID] = p
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Plans returns the investment plan table in seed order.
func (l *Ledger) Plans() []models.InvestmentPlan {
	out := make([]models.InvestmentPlan, 0, len(l.planOrder))
	for _, id := range l.planOrder {
		out = append(out, l.plans[id])
	}
	return out
}

// Plan looks up a plan by id.
func (l *Ledger) Plan(id string) (models.InvestmentPlan, error) {
	p, ok := l.plans[id]
	if !ok {
		return models.InvestmentPlan{}, &NotFoundError{Entity: "plan", ID: id}
	}
	return p, nil
}

// Forget drops a cached book so the next access reloads it from the store.
func (l *Ledger) Forget(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.books, userID)
}

// evict drops b from the cache unless it has already been replaced.
func (l *Ledger) evict(userID string, b *book) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.books[userID] == b {
		delete(l.books, userID)
	}
}

func (l *Ledger) currentUser(ctx context.Context) (string, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

func (l *Ledger) bookFor(ctx context.Context, userID string) (*book, error) {
	l.mu.Lock()
	b, ok := l.books[userID]
	l.mu.Unlock()
	if ok {
		return b, nil
	}

	snap, err := l.store.LoadBook(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "load book", Err: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.books[userID]; ok {
		return b, nil
	}
	b = newBook(userID, snap)
	l.books[userID] = b
	return b, nil
}

// mutate runs one ledger operation. build validates against the book under
// its read lock and returns the changes; they are committed to the store and
// then applied in memory.
func (l *Ledger) mutate(ctx context.Context, op, userID string, build func(b *book) (*Mutation, error)) (*Mutation, error) {
	b, err := l.bookFor(ctx, userID)
	if err != nil {
		l.auditError(userID, op, err)
		return nil, err
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.RLock()
	m, err := build(b)
	b.mu.RUnlock()
	if err != nil {
		l.auditError(userID, op, err)
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	m.Op = op

	if err := l.store.Commit(ctx, userID, m); err != nil {
		// The store may hold rows this book has not seen; reload on next use.
		l.evict(userID, b)
		perr := &PersistenceError{Op: op, Err: err}
		l.log.WithFields(logrus.Fields{"user_id": userID, "op": op}).WithError(err).Error("[LEDGER] Commit failed, nothing applied")
		l.auditError(userID, op, perr)
		return nil, perr
	}

	b.mu.Lock()
	b.apply(m)
	b.mu.Unlock()

	var txID string
	if m.Transaction != nil {
		txID = m.Transaction.ID
	}
	if l.audit != nil {
		l.audit.LogMutation(userID, op, txID, m)
	}
	return m, nil
}

func (l *Ledger) auditError(userID, op string, err error) {
	if l.audit != nil {
		l.audit.LogError(userID, op, err)
	}
}

func (l *Ledger) publish(ctx context.Context, event models.LedgerEvent) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.log.WithFields(logrus.Fields{"user_id": event.UserID, "event": event.Type}).WithError(err).Warn("[LEDGER] Failed to publish event")
	}
}

func (l *Ledger) newTransaction(userID string, typ models.TransactionType, amount decimal.Decimal, description string, meta models.Metadata, at time.Time) models.Transaction {
	return models.Transaction{
		ID:          l.newID("tx"),
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Date:        at,
		Status:      models.TransactionStatusCompleted,
		Description: description,
		Metadata:    meta,
	}
}

func maskedNumber() string {
	return fmt.Sprintf("**** %04d", rand.Intn(10000))
}

// requireAmount accepts positive amounts in whole cents, the precision the
// store keeps.
func requireAmount(field string, v decimal.Decimal) error {
	if !v.IsPositive() || !v.Equal(v.Round(2)) {
		return &InvalidAmountError{Field: field, Value: v.String()}
	}
	return nil
}

func copyTransaction(tx models.Transaction) *models.Transaction {
	tx.Metadata = tx.Metadata.Clone()
	return &tx
}

// Accounts returns the signed-in user's accounts in creation order.
func (l *Ledger) Accounts(ctx context.Context) ([]models.Account, error) {
	b, err := l.readBook(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Account, 0, len(b.accountOrder))
	for _, id := range b.accountOrder {
		out = append(out, *b.accounts[id])
	}
	return out, nil
}

// Account returns one of the signed-in user's accounts.
func (l *Ledger) Account(ctx context.Context, id string) (*models.Account, error) {
	b, err := l.readBook(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	a, err := b.account(id)
	if err != nil {
		return nil, err
	}
	cp := *a
	return &cp, nil
}

// TransactionFilter narrows a transaction listing. Zero values match all.
type TransactionFilter struct {
	Type  models.TransactionType
	Limit int
}

// Transactions returns the signed-in user's transaction log, newest first.
func (l *Ledger) Transactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	b, err := l.readBook(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Transaction, 0, len(b.transactions))
	for i := len(b.transactions) - 1; i >= 0; i-- {
		tx := b.transactions[i]
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		out = append(out, *copyTransaction(tx))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Loans returns the signed-in user's loans, newest first.
func (l *Ledger) Loans(ctx context.Context) ([]models.Loan, error) {
	b, err := l.readBook(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Loan, 0, len(b.loanOrder))
	for i := len(b.loanOrder) - 1; i >= 0; i-- {
		out = append(out, *b.loans[b.loanOrder[i]])
	}
	return out, nil
}

// Investments returns the signed-in user's investments, newest first.
func (l *Ledger) Investments(ctx context.Context) ([]models.Investment, error) {
	b, err := l.readBook(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Investment, 0, len(b.investmentOrder))
	for i := len(b.investmentOrder) - 1; i >= 0; i-- {
		out = append(out, *b.investments[b.investmentOrder[i]])
	}
	return out, nil
}

// Summary is the dashboard view of a user's book.
type Summary struct {
	TotalBalance      decimal.Decimal `json:"totalBalance"`
	LockedInPlans     decimal.Decimal `json:"lockedInPlans"`
	ActiveInvestments int             `json:"activeInvestments"`
	PendingLoans      int             `json:"pendingLoans"`
	TransactionCount  int             `json:"transactionCount"`
}

// Summary totals the signed-in user's balances and open positions.
func (l *Ledger) Summary(ctx context.Context) (*Summary, error) {
	b, err := l.readBook(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := &Summary{TotalBalance: decimal.Zero, LockedInPlans: decimal.Zero, TransactionCount: len(b.transactions)}
	for _, a := range b.accounts {
		s.TotalBalance = s.TotalBalance.Add(a.Balance)
	}
	for _, inv := range b.investments {
		if inv.Status == models.InvestmentStatusActive {
			s.ActiveInvestments++
			s.LockedInPlans = s.LockedInPlans.Add(inv.Amount)
		}
	}
	for _, loan := range b.loans {
		if loan.Status == models.LoanStatusPending {
			s.PendingLoans++
		}
	}
	return s, nil
}

func (l *Ledger) readBook(ctx context.Context) (*book, error) {
	userID, err := l.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return l.bookFor(ctx, userID)
}
