package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/primefinance/backend/internal/ledger"
)

type TestStruct struct {
	Name       string `validate:"required,min=2"`
	Email      string `validate:"required,email"`
	TermMonths int    `validate:"required,gt=0"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid struct", func(t *testing.T) {
		valid := TestStruct{Name: "Ada Lovelace", Email: "ada@example.com", TermMonths: 12}
		assert.NoError(t, vh.ValidateStruct(&valid))
	})

	t.Run("invalid struct - missing required fields", func(t *testing.T) {
		invalid := TestStruct{
			Name: "A", // Too short
			// Email and TermMonths missing
		}

		err := vh.ValidateStruct(&invalid)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 3)
	})

	t.Run("invalid email format", func(t *testing.T) {
		invalid := TestStruct{Name: "Ada", Email: "invalid-email", TermMonths: 1}

		err := vh.ValidateStruct(&invalid)
		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 1)
		assert.Equal(t, "Email", validationErrors[0].Field())
		assert.Equal(t, "email", validationErrors[0].Tag())
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("error response with validation errors", func(t *testing.T) {
		validationErr := NewValidationHelper().ValidateStruct(&TestStruct{Name: "A", Email: "nope"})
		assert.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Validation failed", response.Error)
		assert.Contains(t, response.Details, "Name")
		assert.Contains(t, response.Details, "Email")
		assert.Contains(t, response.Details, "TermMonths")
	})

	t.Run("non-validation error is not expanded", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, errors.New("boom"))

		var response ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Nil(t, response.Details)
	})
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"single object", `{"name":"Main"}`, false},
		{"unknown field", `{"name":"Main","extra":1}`, true},
		{"trailing object", `{"name":"Main"}{"name":"Other"}`, true},
		{"not json", `invalid`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := DecodeJSON(httptest.NewRecorder(), r, &dst)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLedgerErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ledger.ErrUnauthenticated, http.StatusUnauthorized},
		{&ledger.NotFoundError{Entity: "account", ID: "a"}, http.StatusNotFound},
		{&ledger.InvalidAmountError{Field: "amount", Value: "0"}, http.StatusBadRequest},
		{ledger.ErrSameAccount, http.StatusBadRequest},
		{ledger.ErrAccountName, http.StatusBadRequest},
		{&ledger.AmountOutOfRangeError{Amount: decimal.NewFromInt(1), Min: decimal.NewFromInt(100), Max: decimal.NewFromInt(200)}, http.StatusUnprocessableEntity},
		{&ledger.InsufficientFundsError{AccountID: "a"}, http.StatusUnprocessableEntity},
		{&ledger.InvalidStateError{LoanID: "l"}, http.StatusConflict},
		{&ledger.PersistenceError{Op: "transfer", Err: errors.New("down")}, http.StatusBadGateway},
		{fmt.Errorf("wrapped: %w", &ledger.NotFoundError{Entity: "loan"}), http.StatusNotFound},
		{errors.New("surprise"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, LedgerErrorStatus(tt.err))
		})
	}
}

func TestSendLedgerError_HidesPersistenceCause(t *testing.T) {
	w := httptest.NewRecorder()
	SendLedgerError(w, &ledger.PersistenceError{Op: "deposit", Err: errors.New("pq: password authentication failed")})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
