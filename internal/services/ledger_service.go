package services

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/primefinance/backend/internal/auth"
	"github.com/primefinance/backend/internal/calculator"
	"github.com/primefinance/backend/internal/ledger"
	"github.com/primefinance/backend/internal/models"
)

// LedgerService exposes the ledger engine over HTTP.
type LedgerService struct {
	ledger    *ledger.Ledger
	validator *ValidationHelper
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewLedgerService(l *ledger.Ledger, log logrus.FieldLogger) *LedgerService {
	return &LedgerService{
		ledger:    l,
		validator: NewValidationHelper(),
		log:       log,
		now:       time.Now,
	}
}

// decodeAndValidate reads the body into req and validates it, writing the
// error response itself. It reports whether the handler should continue.
func (s *LedgerService) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := DecodeJSON(w, r, req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *LedgerService) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	userID, _ := auth.UserID(r.Context())
	entry := s.log.WithFields(logrus.Fields{"op": op, "user_id": userID}).WithError(err)
	if LedgerErrorStatus(err) >= http.StatusInternalServerError {
		entry.Error("[LEDGER] Request failed")
	} else {
		entry.Info("[LEDGER] Request rejected")
	}
	SendLedgerError(w, err)
}

// ListPlans returns the investment plans
// @Summary List investment plans
// @Tags plans
// @Produce json
// @Success 200 {array} models.InvestmentPlan
// @Router /plans [get]
func (s *LedgerService) ListPlans(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, s.ledger.Plans())
}

// EstimateRequest is the body of a plan return estimate.
type EstimateRequest struct {
	Amount float64 `json:"amount" example:"500"`
}

// EstimateResponse previews an investment's outcome.
type EstimateResponse struct {
	PlanID         string  `json:"planId"`
	Amount         float64 `json:"amount"`
	ExpectedReturn float64 `json:"expectedReturn"`
	MaturityAmount float64 `json:"maturityAmount"`
	DurationDays   int     `json:"durationDays"`
}

// EstimatePlan previews the return of an investment
// @Summary Estimate plan return
// @Description Compound the amount over the plan. Non-positive amounts estimate to zero.
// @Tags plans
// @Accept json
// @Produce json
// @Param planId path string true "Plan ID"
// @Param request body EstimateRequest true "Amount to invest"
// @Success 200 {object} EstimateResponse
// @Failure 404 {object} ErrorResponse
// @Router /plans/{planId}/estimate [post]
func (s *LedgerService) EstimatePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.ledger.Plan(chi.URLParam(r, "planId"))
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	var req EstimateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	est := calculator.EstimatePlanReturn(plan, req.Amount)
	SendJSON(w, http.StatusOK, EstimateResponse{
		PlanID:         plan.ID,
		Amount:         req.Amount,
		ExpectedReturn: est.ExpectedReturn,
		MaturityAmount: est.MaturityAmount,
		DurationDays:   plan.DurationDays,
	})
}

// ScheduleRequest describes a loan to amortise.
type ScheduleRequest struct {
	Amount       float64 `json:"amount" validate:"gt=0" example:"5000"`
	TermMonths   int     `json:"termMonths" validate:"gt=0,lte=600" example:"12"`
	InterestRate float64 `json:"interestRate" validate:"gte=0" example:"0.05"`
}

// ScheduleResponse is a loan repayment plan.
type ScheduleResponse struct {
	MonthlyPayment float64                  `json:"monthlyPayment"`
	TotalPayable   float64                  `json:"totalPayable"`
	Installments   []calculator.Installment `json:"installments"`
}

// LoanSchedule previews a loan repayment schedule
// @Summary Loan repayment schedule
// @Tags loans
// @Accept json
// @Produce json
// @Param request body ScheduleRequest true "Loan terms"
// @Success 200 {object} ScheduleResponse
// @Failure 400 {object} ErrorResponse
// @Router /loans/schedule [post]
func (s *LedgerService) LoanSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	SendJSON(w, http.StatusOK, ScheduleResponse{
		MonthlyPayment: calculator.MonthlyPayment(req.Amount, req.TermMonths, req.InterestRate),
		TotalPayable:   calculator.TotalPayable(req.Amount, req.TermMonths, req.InterestRate),
		Installments:   calculator.LoanSchedule(req.Amount, req.TermMonths, req.InterestRate, s.now()),
	})
}

// ListAccounts returns the user's accounts
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Account
// @Failure 401 {object} ErrorResponse
// @Router /accounts [get]
func (s *LedgerService) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.Accounts(r.Context())
	if err != nil {
		s.fail(w, r, "list_accounts", err)
		return
	}
	SendJSON(w, http.StatusOK, accounts)
}

// OpenAccountRequest names a new account.
type OpenAccountRequest struct {
	Name string `json:"name" validate:"required,max=64" example:"Holiday fund"`
}

// OpenAccount opens a new zero-balance account
// @Summary Open account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OpenAccountRequest true "Account name"
// @Success 201 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Router /accounts [post]
func (s *LedgerService) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	acc, err := s.ledger.OpenAccount(r.Context(), req.Name)
	if err != nil {
		s.fail(w, r, "open_account", err)
		return
	}
	SendJSON(w, http.StatusCreated, acc)
}

// Summary returns the dashboard totals
// @Summary Dashboard summary
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ledger.Summary
// @Router /summary [get]
func (s *LedgerService) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.Summary(r.Context())
	if err != nil {
		s.fail(w, r, "summary", err)
		return
	}
	SendJSON(w, http.StatusOK, summary)
}

// TransferRequest moves funds between two of the user's accounts.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountId" validate:"required"`
	ToAccountID   string          `json:"toAccountId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"250.00"`
}

// Transfer moves funds between accounts
// @Summary Transfer between accounts
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransferRequest true "Transfer"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient balance"
// @Failure 502 {object} ErrorResponse "Storage unavailable"
// @Router /transfers [post]
func (s *LedgerService) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	tx, err := s.ledger.Transfer(r.Context(), req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		s.fail(w, r, "transfer", err)
		return
	}
	SendJSON(w, http.StatusCreated, tx)
}

// DepositRequest credits an account.
type DepositRequest struct {
	AccountID   string          `json:"accountId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"100.00"`
	Description string          `json:"description,omitempty" validate:"max=140"`
}

// Deposit credits an account
// @Summary Deposit funds
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DepositRequest true "Deposit"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /deposits [post]
func (s *LedgerService) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	tx, err := s.ledger.Deposit(r.Context(), req.AccountID, req.Amount, req.Description)
	if err != nil {
		s.fail(w, r, "deposit", err)
		return
	}
	SendJSON(w, http.StatusCreated, tx)
}

// ListTransactions returns the transaction history
// @Summary Transaction history
// @Description Newest first, optionally filtered by type
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param type query string false "transfer, investment, loan or deposit"
// @Param limit query int false "Maximum number of records"
// @Success 200 {array} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Router /transactions [get]
func (s *LedgerService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter ledger.TransactionFilter
	if v := r.URL.Query().Get("type"); v != "" && v != "all" {
		typ, ok := models.ParseTransactionType(v)
		if !ok {
			SendErrorResponse(w, "Unknown transaction type", http.StatusBadRequest, nil)
			return
		}
		filter.Type = typ
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			SendErrorResponse(w, "Invalid limit", http.StatusBadRequest, nil)
			return
		}
		filter.Limit = limit
	}

	txs, err := s.ledger.Transactions(r.Context(), filter)
	if err != nil {
		s.fail(w, r, "list_transactions", err)
		return
	}
	SendJSON(w, http.StatusOK, txs)
}

// ListLoans returns the user's loans
// @Summary List loans
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Loan
// @Router /loans [get]
func (s *LedgerService) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.ledger.Loans(r.Context())
	if err != nil {
		s.fail(w, r, "list_loans", err)
		return
	}
	SendJSON(w, http.StatusOK, loans)
}

// LoanRequest applies for a loan.
type LoanRequest struct {
	Amount       decimal.Decimal `json:"amount" swaggertype:"string" example:"5000"`
	TermMonths   int             `json:"termMonths" validate:"gt=0,lte=600" example:"12"`
	InterestRate float64         `json:"interestRate" validate:"gte=0" example:"0.05"`
	AccountID    string          `json:"accountId" validate:"required"`
}

// ApplyForLoan files a pending loan
// @Summary Apply for a loan
// @Tags loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LoanRequest true "Loan application"
// @Success 201 {object} models.Loan
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /loans [post]
func (s *LedgerService) ApplyForLoan(w http.ResponseWriter, r *http.Request) {
	var req LoanRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	loan, err := s.ledger.ApplyForLoan(r.Context(), req.Amount, req.TermMonths, req.InterestRate, req.AccountID)
	if err != nil {
		s.fail(w, r, "apply_loan", err)
		return
	}
	SendJSON(w, http.StatusCreated, loan)
}

// ApproveLoan approves and disburses a pending loan
// @Summary Approve a loan
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param loanId path string true "Loan ID"
// @Success 200 {object} models.Loan
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Loan is not pending"
// @Router /loans/{loanId}/approve [post]
func (s *LedgerService) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := s.ledger.ApproveLoan(r.Context(), chi.URLParam(r, "loanId"))
	if err != nil {
		s.fail(w, r, "approve_loan", err)
		return
	}
	SendJSON(w, http.StatusOK, loan)
}

// RejectLoan rejects a pending loan
// @Summary Reject a loan
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param loanId path string true "Loan ID"
// @Success 200 {object} models.Loan
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Loan is not pending"
// @Router /loans/{loanId}/reject [post]
func (s *LedgerService) RejectLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := s.ledger.RejectLoan(r.Context(), chi.URLParam(r, "loanId"))
	if err != nil {
		s.fail(w, r, "reject_loan", err)
		return
	}
	SendJSON(w, http.StatusOK, loan)
}

// RepaidRequest identifies the borrower of a repaid loan.
type RepaidRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// MarkLoanRepaid records a repayment completed elsewhere
// @Summary Mark a loan repaid
// @Description Called by the repayment flow. Requires the internal API key.
// @Tags internal
// @Accept json
// @Produce json
// @Param loanId path string true "Loan ID"
// @Param request body RepaidRequest true "Borrower"
// @Success 200 {object} models.Loan
// @Failure 404 {object} ErrorResponse
// @Router /internal/loans/{loanId}/repaid [post]
func (s *LedgerService) MarkLoanRepaid(w http.ResponseWriter, r *http.Request) {
	var req RepaidRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	loan, err := s.ledger.MarkLoanRepaid(r.Context(), req.UserID, chi.URLParam(r, "loanId"))
	if err != nil {
		s.fail(w, r, "repay_loan", err)
		return
	}
	SendJSON(w, http.StatusOK, loan)
}

// ListInvestments returns the user's investments
// @Summary List investments
// @Tags investments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Investment
// @Router /investments [get]
func (s *LedgerService) ListInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := s.ledger.Investments(r.Context())
	if err != nil {
		s.fail(w, r, "list_investments", err)
		return
	}
	SendJSON(w, http.StatusOK, investments)
}

// InvestRequest locks funds into a plan.
type InvestRequest struct {
	PlanID        string          `json:"planId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"500"`
	FromAccountID string          `json:"fromAccountId" validate:"required"`
}

// Invest locks funds into a plan
// @Summary Invest in a plan
// @Tags investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InvestRequest true "Investment"
// @Success 201 {object} models.Investment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Amount outside plan bounds or insufficient balance"
// @Router /investments [post]
func (s *LedgerService) Invest(w http.ResponseWriter, r *http.Request) {
	var req InvestRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	inv, err := s.ledger.InvestInPlan(r.Context(), req.PlanID, req.Amount, req.FromAccountID)
	if err != nil {
		s.fail(w, r, "invest", err)
		return
	}
	SendJSON(w, http.StatusCreated, inv)
}
