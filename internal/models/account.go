package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user's cash account held by the ledger.
type Account struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"userId" db:"user_id"`
	Name      string          `json:"name" db:"name"`
	Number    string          `json:"number" db:"number"` // masked, e.g. "**** 1234"
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	Version   int             `json:"-" db:"version"` // for optimistic locking
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}
