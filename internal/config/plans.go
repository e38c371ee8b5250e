package config

import (
	"github.com/shopspring/decimal"

	"github.com/primefinance/backend/internal/models"
)

// SeedPlans returns the built-in investment plan table, used when the store
// has no plans of its own.
func SeedPlans() []models.InvestmentPlan {
	return []models.InvestmentPlan{
		{
			ID:              "plan1",
			Name:            "Prime Growth 30",
			MinAmount:       decimal.NewFromInt(100),
			MaxAmount:       decimal.NewFromInt(10000),
			ROI:             0.12,
			CompoundingRate: 1,
			DurationDays:    30,
			Description:     "Short-term growth focused plan with moderate risk.",
		},
		{
			ID:              "plan2",
			Name:            "Prime Compound 90",
			MinAmount:       decimal.NewFromInt(500),
			MaxAmount:       decimal.NewFromInt(20000),
			ROI:             0.25,
			CompoundingRate: 3,
			DurationDays:    90,
			Description:     "Quarterly compounding for higher returns over 3 months.",
		},
		{
			ID:              "plan3",
			Name:            "Prime Secure 180",
			MinAmount:       decimal.NewFromInt(1000),
			MaxAmount:       decimal.NewFromInt(50000),
			ROI:             0.35,
			CompoundingRate: 6,
			DurationDays:    180,
			Description:     "Lower volatility plan with steady compounding over 6 months.",
		},
	}
}
