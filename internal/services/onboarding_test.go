package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primefinance/backend/internal/config"
	"github.com/primefinance/backend/internal/ledger"
	"github.com/primefinance/backend/internal/models"
)

var seedAccounts = []config.SeedAccount{
	{Name: "Wall Street Bank", OpeningBalance: decimal.NewFromInt(3500)},
	{Name: "Prime Savings", OpeningBalance: decimal.NewFromInt(1200)},
	{Name: "Spare", OpeningBalance: decimal.Zero},
}

func TestOnboarding_SeedsAccountsOnSignUp(t *testing.T) {
	l := newTestLedger()
	onboarding := NewOnboarding(l, seedAccounts, quietLogger())

	onboarding.HandleAuthStateChange(context.Background(), AuthStateChange{
		Event: AuthSignedUp,
		User:  models.User{ID: "user-1"},
	})

	ctx := userContext("user-1")
	accounts, err := l.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	balances := map[string]string{}
	for _, acc := range accounts {
		balances[acc.Name] = acc.Balance.String()
	}
	assert.Equal(t, map[string]string{"Wall Street Bank": "3500", "Prime Savings": "1200", "Spare": "0"}, balances)

	txs, err := l.Transactions(ctx, ledger.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, models.TransactionDeposit, tx.Type)
		assert.Equal(t, "Opening balance", tx.Description)
	}
}

func TestOnboarding_IgnoresSignIn(t *testing.T) {
	l := newTestLedger()
	onboarding := NewOnboarding(l, seedAccounts, quietLogger())

	onboarding.HandleAuthStateChange(context.Background(), AuthStateChange{
		Event: AuthSignedIn,
		User:  models.User{ID: "user-1"},
	})

	accounts, err := l.Accounts(userContext("user-1"))
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestOnboarding_SignOutReloadsBook(t *testing.T) {
	l := newTestLedger()
	onboarding := NewOnboarding(l, seedAccounts[:1], quietLogger())
	require.NoError(t, onboarding.Seed(context.Background(), "user-1"))

	onboarding.HandleAuthStateChange(context.Background(), AuthStateChange{
		Event: AuthSignedOut,
		User:  models.User{ID: "user-1"},
	})

	accounts, err := l.Accounts(userContext("user-1"))
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "3500", accounts[0].Balance.String())
}

func TestOnboarding_WiredToAuthService(t *testing.T) {
	l := newTestLedger()
	service := NewAuthService(nil, nil, quietLogger())
	service.OnAuthStateChange(NewOnboarding(l, seedAccounts, quietLogger()).HandleAuthStateChange)

	service.notify(context.Background(), AuthStateChange{Event: AuthSignedUp, User: models.User{ID: "user-7"}})

	summary, err := l.Summary(userContext("user-7"))
	require.NoError(t, err)
	assert.Equal(t, "4700", summary.TotalBalance.String())
}
