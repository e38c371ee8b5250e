package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primefinance/backend/internal/ledger"
	"github.com/primefinance/backend/internal/models"
)

func TestStore_CommitAndLoad(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	acc := models.Account{ID: "acc_1", UserID: "u1", Name: "Main", Balance: decimal.Zero, CreatedAt: now}
	require.NoError(t, s.Commit(ctx, "u1", &ledger.Mutation{OpenedAccount: &acc}))

	credited := acc
	credited.Balance = decimal.NewFromInt(250)
	tx := models.Transaction{ID: "tx_1", UserID: "u1", Type: models.TransactionDeposit, Amount: decimal.NewFromInt(250), Metadata: models.Metadata{"accountId": "acc_1"}}
	require.NoError(t, s.Commit(ctx, "u1", &ledger.Mutation{Accounts: []models.Account{credited}, Transaction: &tx}))

	snap, err := s.LoadBook(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, snap.Accounts, 1)
	assert.True(t, snap.Accounts[0].Balance.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 1, snap.Accounts[0].Version)
	require.Len(t, snap.Transactions, 1)

	// snapshots are copies
	snap.Transactions[0].Metadata["accountId"] = "changed"
	again, err := s.LoadBook(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "acc_1", again.Transactions[0].Metadata["accountId"])
}

func TestStore_VersionConflictLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	a := models.Account{ID: "a", Balance: decimal.NewFromInt(10)}
	b := models.Account{ID: "b", Balance: decimal.Zero}
	require.NoError(t, s.Commit(ctx, "u1", &ledger.Mutation{OpenedAccount: &a}))
	require.NoError(t, s.Commit(ctx, "u1", &ledger.Mutation{OpenedAccount: &b}))

	stale := b
	stale.Version = 3
	debited := a
	debited.Balance = decimal.Zero
	tx := models.Transaction{ID: "tx"}
	err := s.Commit(ctx, "u1", &ledger.Mutation{Accounts: []models.Account{debited, stale}, Transaction: &tx})
	assert.ErrorIs(t, err, ErrVersionConflict)

	snap, err := s.LoadBook(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, snap.Accounts[0].Balance.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, snap.Transactions)
}

func TestStore_UsersWithDueInvestments(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, c := range []struct {
		user string
		end  time.Time
	}{
		{"early", start.AddDate(0, 0, 30)},
		{"late", start.AddDate(0, 0, 180)},
	} {
		inv := models.Investment{ID: "inv_" + c.user, UserID: c.user, Status: models.InvestmentStatusActive, StartDate: start, EndDate: c.end}
		require.NoError(t, s.Commit(ctx, c.user, &ledger.Mutation{NewInvestment: &inv}))
	}

	users, err := s.UsersWithDueInvestments(ctx, start.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, []string{"early"}, users)

	users, err = s.UsersWithDueInvestments(ctx, start.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, users)
}

func TestStore_UnknownUserLoadsEmpty(t *testing.T) {
	snap, err := NewStore(nil).LoadBook(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, snap.Accounts)
	assert.Empty(t, snap.Transactions)
}
