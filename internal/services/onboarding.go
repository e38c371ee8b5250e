package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/primefinance/backend/internal/auth"
	"github.com/primefinance/backend/internal/config"
	"github.com/primefinance/backend/internal/ledger"
)

const openingBalanceDescription = "Opening balance"

// Onboarding seeds new users with their starter accounts and drops cached
// books when a session ends.
type Onboarding struct {
	ledger   *ledger.Ledger
	accounts []config.SeedAccount
	log      logrus.FieldLogger
}

func NewOnboarding(l *ledger.Ledger, accounts []config.SeedAccount, log logrus.FieldLogger) *Onboarding {
	return &Onboarding{ledger: l, accounts: accounts, log: log}
}

// HandleAuthStateChange is an AuthStateListener.
func (o *Onboarding) HandleAuthStateChange(ctx context.Context, change AuthStateChange) {
	switch change.Event {
	case AuthSignedUp:
		if err := o.Seed(ctx, change.User.ID); err != nil {
			o.log.WithError(err).WithField("user_id", change.User.ID).Error("[ONBOARDING] Failed to seed accounts")
		}
	case AuthSignedOut:
		o.ledger.Forget(change.User.ID)
	}
}

// Seed opens every configured starter account for userID and credits its
// opening balance. Accounts with a zero opening balance get no deposit.
func (o *Onboarding) Seed(ctx context.Context, userID string) error {
	ctx = auth.WithUserID(ctx, userID)

	for _, seed := range o.accounts {
		acc, err := o.ledger.OpenAccount(ctx, seed.Name)
		if err != nil {
			return err
		}
		if !seed.OpeningBalance.IsPositive() {
			continue
		}
		if _, err := o.ledger.Deposit(ctx, acc.ID, seed.OpeningBalance, openingBalanceDescription); err != nil {
			return err
		}
	}

	o.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"accounts": len(o.accounts),
	}).Info("[ONBOARDING] Seeded starter accounts")
	return nil
}
