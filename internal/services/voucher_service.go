package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"github.com/primefinance/backend/internal/auth"
	"github.com/primefinance/backend/internal/ledger"
)

const voucherAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const voucherDescription = "Voucher deposit"

var (
	ErrVoucherNotFound = errors.New("invalid or expired voucher")
	ErrVoucherOwner    = errors.New("voucher belongs to another user")
)

// Voucher is a one-time deposit code held in Redis until redeemed or expired.
type Voucher struct {
	Code      string          `json:"code"`
	UserID    string          `json:"userId"`
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// VoucherService issues deposit vouchers as QR codes and credits them to the
// ledger on redemption.
type VoucherService struct {
	redis      *redis.Client
	ledger     *ledger.Ledger
	log        logrus.FieldLogger
	ttl        time.Duration
	codeLength int
	now        func() time.Time
	newCode    func(n int) (string, error)
}

func NewVoucherService(redisClient *redis.Client, l *ledger.Ledger, ttl time.Duration, codeLength int, log logrus.FieldLogger) *VoucherService {
	return &VoucherService{
		redis:      redisClient,
		ledger:     l,
		log:        log,
		ttl:        ttl,
		codeLength: codeLength,
		now:        time.Now,
		newCode:    randomCode,
	}
}

func voucherKey(code string) string {
	return fmt.Sprintf("voucher:%s", code)
}

// Issue creates a voucher worth amount for one of the signed-in user's
// accounts and returns it with a base64 PNG QR image of its code.
func (s *VoucherService) Issue(ctx context.Context, accountID string, amount decimal.Decimal) (*Voucher, string, error) {
	if _, err := s.ledger.Account(ctx, accountID); err != nil {
		return nil, "", err
	}
	if !amount.IsPositive() {
		return nil, "", &ledger.InvalidAmountError{Field: "amount", Value: amount.String()}
	}
	userID, _ := auth.UserID(ctx)

	code, err := s.newCode(s.codeLength)
	if err != nil {
		return nil, "", err
	}

	v := &Voucher{
		Code:      code,
		UserID:    userID,
		AccountID: accountID,
		Amount:    amount,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	if err := s.redis.Set(ctx, voucherKey(code), string(data), s.ttl).Err(); err != nil {
		return nil, "", fmt.Errorf("store voucher: %w", err)
	}

	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return nil, "", err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "account_id": accountID, "amount": amount.String()}).
		Info("[VOUCHER] Issued")
	return v, base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Redeem claims a voucher and deposits its amount. A voucher can be redeemed
// once; if the deposit fails the voucher is restored for its remaining
// lifetime.
func (s *VoucherService) Redeem(ctx context.Context, code string) (*Voucher, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, ledger.ErrUnauthenticated
	}
	key := voucherKey(code)

	data, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load voucher: %w", err)
	}

	var v Voucher
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("decode voucher: %w", err)
	}
	if v.UserID != userID {
		return nil, ErrVoucherOwner
	}

	// Del is the claim: only the caller that removed the key may deposit.
	n, err := s.redis.Del(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("claim voucher: %w", err)
	}
	if n != 1 {
		return nil, ErrVoucherNotFound
	}

	if _, err := s.ledger.Deposit(ctx, v.AccountID, v.Amount, voucherDescription); err != nil {
		if remaining := v.ExpiresAt.Sub(s.now()); remaining > 0 {
			if rerr := s.redis.Set(context.WithoutCancel(ctx), key, data, remaining).Err(); rerr != nil {
				s.log.WithError(rerr).WithField("user_id", userID).Error("[VOUCHER] Failed to restore voucher")
			}
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "account_id": v.AccountID, "amount": v.Amount.String()}).
		Info("[VOUCHER] Redeemed")
	return &v, nil
}

func randomCode(n int) (string, error) {
	if n <= 0 {
		n = 10
	}
	limit := big.NewInt(int64(len(voucherAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = voucherAlphabet[idx.Int64()]
	}
	return string(b), nil
}
