package models

import "github.com/shopspring/decimal"

// InvestmentPlan is immutable reference data describing an investment product.
type InvestmentPlan struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	MinAmount       decimal.Decimal `json:"minAmount" db:"min_amount"`
	MaxAmount       decimal.Decimal `json:"maxAmount" db:"max_amount"`
	ROI             float64         `json:"roi" db:"roi"`                          // total return fraction over the duration
	CompoundingRate int             `json:"compoundingRate" db:"compounding_rate"` // periods per duration
	DurationDays    int             `json:"durationDays" db:"duration_days"`
	Description     string          `json:"description" db:"description"`
}
