package main

import (
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/primefinance/backend/internal/calculator"
	"github.com/primefinance/backend/internal/config"
	"github.com/primefinance/backend/internal/models"
)

var (
	infoSymbol  = "→"
	errorSymbol = "✗"

	headerStyle = lipgloss.NewStyle().Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	amountStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
)

type Commands struct {
	Plans    PlansCmd    `cmd:"" help:"List the investment plans."`
	Estimate EstimateCmd `cmd:"" help:"Estimate the return of investing in a plan."`
	Schedule ScheduleCmd `cmd:"" help:"Print a loan repayment schedule."`
}

func printInfof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func findPlan(id string) (models.InvestmentPlan, bool) {
	for _, p := range config.SeedPlans() {
		if p.ID == id {
			return p, true
		}
	}
	return models.InvestmentPlan{}, false
}

type PlansCmd struct{}

func (cmd *PlansCmd) Run(ctx *kong.Context) error {
	w := ctx.Stdout
	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-6s %-20s %10s %10s %6s %5s", "ID", "NAME", "MIN", "MAX", "ROI", "DAYS")))
	for _, p := range config.SeedPlans() {
		_, _ = fmt.Fprintf(w, "%-6s %-20s %10s %10s %5.1f%% %5d\n",
			p.ID, p.Name, p.MinAmount.StringFixed(2), p.MaxAmount.StringFixed(2), p.ROI*100, p.DurationDays)
	}
	return nil
}

type EstimateCmd struct {
	Plan   string  `help:"Plan id." arg:""`
	Amount float64 `help:"Amount to invest." arg:""`
}

func (cmd *EstimateCmd) Run(ctx *kong.Context) error {
	plan, ok := findPlan(cmd.Plan)
	if !ok {
		printError(ctx.Stderr, fmt.Sprintf("unknown plan %q", cmd.Plan))
		return fmt.Errorf("plan %s not found", cmd.Plan)
	}

	est := calculator.EstimatePlanReturn(plan, cmd.Amount)
	printInfof(ctx.Stdout, "%s over %d days", plan.Name, plan.DurationDays)
	_, _ = fmt.Fprintf(ctx.Stdout, "  expected return  %s\n", amountStyle.Render(fmt.Sprintf("%.2f", est.ExpectedReturn)))
	_, _ = fmt.Fprintf(ctx.Stdout, "  at maturity      %s\n", amountStyle.Render(fmt.Sprintf("%.2f", est.MaturityAmount)))
	return nil
}

type ScheduleCmd struct {
	Amount float64 `help:"Loan principal." arg:""`
	Months int     `help:"Term in months." arg:""`
	Rate   float64 `help:"Annual interest rate as a fraction, 0.05 for 5%." default:"0"`
	Start  string  `help:"Start date (YYYY-MM-DD). Defaults to today." default:""`
}

func (cmd *ScheduleCmd) Run(ctx *kong.Context) error {
	start := time.Now()
	if cmd.Start != "" {
		t, err := time.Parse(time.DateOnly, cmd.Start)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		start = t
	}

	schedule := calculator.LoanSchedule(cmd.Amount, cmd.Months, cmd.Rate, start)
	if len(schedule) == 0 {
		printError(ctx.Stderr, "amount and months must be positive and rate non-negative")
		return fmt.Errorf("invalid loan terms")
	}

	w := ctx.Stdout
	printInfof(w, "Monthly payment %s, total payable %s",
		amountStyle.Render(fmt.Sprintf("%.2f", calculator.MonthlyPayment(cmd.Amount, cmd.Months, cmd.Rate))),
		amountStyle.Render(fmt.Sprintf("%.2f", calculator.TotalPayable(cmd.Amount, cmd.Months, cmd.Rate))))
	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%3s  %-10s %10s %10s %10s %12s", "#", "DUE", "PAYMENT", "PRINCIPAL", "INTEREST", "REMAINING")))
	for _, inst := range schedule {
		_, _ = fmt.Fprintf(w, "%3d  %-10s %10.2f %10.2f %10.2f %12.2f\n",
			inst.Number, inst.DueDate.Format(time.DateOnly), inst.Payment, inst.Principal, inst.Interest, inst.Remaining)
	}
	return nil
}
