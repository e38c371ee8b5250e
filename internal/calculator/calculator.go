// Package calculator holds the pure investment-return and loan-repayment
// formulas used to preview and price ledger operations.
package calculator

import (
	"math"
	"time"

	"github.com/primefinance/backend/internal/models"
)

// PlanReturn is the projected outcome of investing in a plan.
type PlanReturn struct {
	ExpectedReturn float64 `json:"expectedReturn"`
	MaturityAmount float64 `json:"maturityAmount"`
}

// EstimatePlanReturn compounds amount compoundingRate times over the plan
// duration, treating roi as the total return for that duration:
//
//	maturity = amount * (1 + roi/compoundingRate) ^ compoundingRate
//
// Non-positive or non-finite amounts yield a zero estimate.
func EstimatePlanReturn(plan models.InvestmentPlan, amount float64) PlanReturn {
	if !(amount > 0) || math.IsInf(amount, 1) {
		return PlanReturn{}
	}
	n := float64(plan.CompoundingRate)
	maturity := amount * math.Pow(1+plan.ROI/n, n)
	return PlanReturn{
		ExpectedReturn: maturity - amount,
		MaturityAmount: maturity,
	}
}

// Installment is one scheduled loan repayment.
type Installment struct {
	Number    int       `json:"number"`
	DueDate   time.Time `json:"dueDate"`
	Payment   float64   `json:"payment"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
	Remaining float64   `json:"remaining"`
}

// MonthlyPayment returns the level payment that amortises amount over
// termMonths at annualRate (a fraction, 0.12 for 12%).
func MonthlyPayment(amount float64, termMonths int, annualRate float64) float64 {
	if amount <= 0 || termMonths <= 0 {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return amount / float64(termMonths)
	}
	return amount * r / (1 - math.Pow(1+r, -float64(termMonths)))
}

// TotalPayable is the sum of all payments over the loan term.
func TotalPayable(amount float64, termMonths int, annualRate float64) float64 {
	var total float64
	for _, inst := range LoanSchedule(amount, termMonths, annualRate, time.Time{}) {
		total += inst.Payment
	}
	return roundCents(total)
}

// LoanSchedule builds the amortisation table starting one month after start.
// Amounts are rounded to cents; the last installment absorbs the rounding so
// that principal repaid equals amount exactly.
func LoanSchedule(amount float64, termMonths int, annualRate float64, start time.Time) []Installment {
	if amount <= 0 || termMonths <= 0 || annualRate < 0 {
		return nil
	}

	payment := roundCents(MonthlyPayment(amount, termMonths, annualRate))
	r := annualRate / 12
	remaining := amount
	schedule := make([]Installment, 0, termMonths)

	for i := 1; i <= termMonths; i++ {
		interest := roundCents(remaining * r)
		principal := roundCents(payment - interest)
		if i == termMonths {
			principal = roundCents(remaining)
		}
		remaining = roundCents(remaining - principal)

		schedule = append(schedule, Installment{
			Number:    i,
			DueDate:   start.AddDate(0, i, 0),
			Payment:   roundCents(principal + interest),
			Principal: principal,
			Interest:  interest,
			Remaining: remaining,
		})
	}
	return schedule
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
