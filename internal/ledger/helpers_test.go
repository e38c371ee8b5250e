package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/primefinance/backend/internal/auth"
	"github.com/primefinance/backend/internal/ledger"
	"github.com/primefinance/backend/internal/models"
	"github.com/primefinance/backend/internal/storage/memory"
)

var testPlans = []models.InvestmentPlan{
	{ID: "plan1", Name: "Prime Growth 30", MinAmount: decimal.NewFromInt(100), MaxAmount: decimal.NewFromInt(10000), ROI: 0.12, CompoundingRate: 1, DurationDays: 30},
	{ID: "plan2", Name: "Prime Compound 90", MinAmount: decimal.NewFromInt(500), MaxAmount: decimal.NewFromInt(20000), ROI: 0.25, CompoundingRate: 3, DurationDays: 90},
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sequentialIDs() func(string) string {
	var n atomic.Int64
	return func(prefix string) string {
		return fmt.Sprintf("%s_%d", prefix, n.Add(1))
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LedgerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e models.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ledger    *ledger.Ledger
	store     *memory.Store
	clock     *fakeClock
	publisher *recordingPublisher
	ctx       context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	f := &fixture{
		store:     memory.NewStore(testPlans),
		clock:     newFakeClock(),
		publisher: &recordingPublisher{},
		ctx:       auth.WithUserID(context.Background(), "user-1"),
	}
	f.ledger = ledger.New(f.store, testPlans,
		ledger.WithClock(f.clock.Now),
		ledger.WithIDGenerator(sequentialIDs()),
		ledger.WithPublisher(f.publisher),
		ledger.WithLogger(logger),
	)
	return f
}

// fund opens an account and deposits amount into it.
func (f *fixture) fund(t *testing.T, name string, amount int64) *models.Account {
	t.Helper()
	acc, err := f.ledger.OpenAccount(f.ctx, name)
	require.NoError(t, err)
	if amount > 0 {
		_, err = f.ledger.Deposit(f.ctx, acc.ID, decimal.NewFromInt(amount), "")
		require.NoError(t, err)
	}
	return acc
}

func (f *fixture) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	acc, err := f.ledger.Account(f.ctx, accountID)
	require.NoError(t, err)
	return acc.Balance
}

// MockStore wraps a real store so individual calls can be failed.
type MockStore struct {
	mock.Mock
	inner ledger.Store
}

func (m *MockStore) LoadBook(ctx context.Context, userID string) (*ledger.Snapshot, error) {
	return m.inner.LoadBook(ctx, userID)
}

func (m *MockStore) ListPlans(ctx context.Context) ([]models.InvestmentPlan, error) {
	return m.inner.ListPlans(ctx)
}

func (m *MockStore) Commit(ctx context.Context, userID string, mu *ledger.Mutation) error {
	args := m.Called(userID, mu.Op)
	if err := args.Error(0); err != nil {
		return err
	}
	return m.inner.Commit(ctx, userID, mu)
}

func (m *MockStore) UsersWithDueInvestments(ctx context.Context, asOf time.Time) ([]string, error) {
	args := m.Called(asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func contextFor(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}
