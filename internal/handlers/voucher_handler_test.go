package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primefinance/backend/internal/auth"
	"github.com/primefinance/backend/internal/ledger"
	"github.com/primefinance/backend/internal/services"
	"github.com/primefinance/backend/internal/storage/memory"
)

func newTestHandler(t *testing.T) (*VoucherHandler, redismock.ClientMock, *ledger.Ledger) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	rdb, mock := redismock.NewClientMock()
	l := ledger.New(memory.NewStore(nil), nil, ledger.WithLogger(log))
	service := services.NewVoucherService(rdb, l, 15*time.Minute, 10, log)
	return NewVoucherHandler(service), mock, l
}

func request(body, userID string) *http.Request {
	r := httptest.NewRequest("POST", "/vouchers", strings.NewReader(body))
	if userID != "" {
		r = r.WithContext(auth.WithUserID(r.Context(), userID))
	}
	return r
}

func TestVoucherHandler_IssueVoucher(t *testing.T) {
	h, _, _ := newTestHandler(t)

	t.Run("invalid request body", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.IssueVoucher(w, request("invalid", "user-1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing account", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.IssueVoucher(w, request(`{"amount":"10"}`, "user-1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.IssueVoucher(w, request(`{"accountId":"acc_missing","amount":"10"}`, "user-1"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.IssueVoucher(w, request(`{"accountId":"acc_1","amount":"10"}`, ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestVoucherHandler_RedeemVoucher(t *testing.T) {
	h, mock, l := newTestHandler(t)

	ctx := auth.WithUserID(context.Background(), "user-1")
	acc, err := l.OpenAccount(ctx, "Checking")
	require.NoError(t, err)

	data, err := json.Marshal(services.Voucher{
		Code:      "QRSTUV2345",
		UserID:    "user-1",
		AccountID: acc.ID,
		Amount:    decimal.NewFromInt(25),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	t.Run("credits the account", func(t *testing.T) {
		mock.ExpectGet("voucher:QRSTUV2345").SetVal(string(data))
		mock.ExpectDel("voucher:QRSTUV2345").SetVal(1)

		w := httptest.NewRecorder()
		h.RedeemVoucher(w, request(`{"code":"QRSTUV2345"}`, "user-1"))

		assert.Equal(t, http.StatusOK, w.Code)
		got, err := l.Account(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, "25", got.Balance.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired", func(t *testing.T) {
		mock.ExpectGet("voucher:QRSTUV2345").RedisNil()

		w := httptest.NewRecorder()
		h.RedeemVoucher(w, request(`{"code":"QRSTUV2345"}`, "user-1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("another user", func(t *testing.T) {
		mock.ExpectGet("voucher:QRSTUV2345").SetVal(string(data))

		w := httptest.NewRecorder()
		h.RedeemVoucher(w, request(`{"code":"QRSTUV2345"}`, "user-2"))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.RedeemVoucher(w, request(`{}`, "user-1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
