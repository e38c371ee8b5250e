package models

import "time"

// User is the authenticated owner of a ledger book.
type User struct {
	ID          string    `json:"id" example:"42"`
	Email       string    `json:"email" example:"user@example.com"`
	DisplayName string    `json:"displayName" example:"Jane Doe"`
	CreatedAt   time.Time `json:"createdAt"`
}
