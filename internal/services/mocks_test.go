package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
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

var testNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupAuthConfig() {
	viper.Set("jwt.secret_key", "test-secret")
	viper.Set("jwt.expiry_hours", 24)
	viper.Set("argon2.salt_length", 16)
	viper.Set("argon2.time", 1)
	viper.Set("argon2.memory", 8*1024)
	viper.Set("argon2.threads", 1)
	viper.Set("argon2.key_length", 32)
}

func newTestLedger() *ledger.Ledger {
	var n atomic.Int64
	return ledger.New(memory.NewStore(testPlans), testPlans,
		ledger.WithClock(func() time.Time { return testNow }),
		ledger.WithIDGenerator(func(prefix string) string {
			return fmt.Sprintf("%s_%d", prefix, n.Add(1))
		}),
		ledger.WithLogger(quietLogger()),
	)
}

func userContext(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

// newRequest builds a request carrying userID the way AuthMiddleware would.
// An empty userID produces an anonymous request.
func newRequest(method, target, body, userID string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		r = r.WithContext(auth.WithUserID(r.Context(), userID))
	}
	return r
}

func openFunded(t *testing.T, l *ledger.Ledger, userID, name string, amount int64) *models.Account {
	t.Helper()
	ctx := userContext(userID)
	acc, err := l.OpenAccount(ctx, name)
	require.NoError(t, err)
	if amount > 0 {
		_, err = l.Deposit(ctx, acc.ID, decimal.NewFromInt(amount), "")
		require.NoError(t, err)
	}
	return acc
}
