// Package postgres persists ledger books in PostgreSQL. Each Commit runs in a
// single database transaction and account rows are guarded by a version
// column.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/primefinance/backend/internal/ledger"
	"github.com/primefinance/backend/internal/models"
)

//go:embed schema.sql
var schema string

type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

func NewStore(db *sql.DB, log logrus.FieldLogger) *Store {
	return &Store{db: db, log: log}
}

// Migrate creates any missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SeedPlans inserts plans that are not yet present.
func (s *Store) SeedPlans(ctx context.Context, plans []models.InvestmentPlan) error {
	for _, p := range plans {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO investment_plans (id, name, min_amount, max_amount, roi, compounding_rate, duration_days, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.MinAmount, p.MaxAmount, p.ROI, p.CompoundingRate, p.DurationDays, p.Description)
		if err != nil {
			return fmt.Errorf("seed plan %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *Store) ListPlans(ctx context.Context) ([]models.InvestmentPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, min_amount, max_amount, roi, compounding_rate, duration_days, description
		FROM investment_plans
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.InvestmentPlan
	for rows.Next() {
		var p models.InvestmentPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.MinAmount, &p.MaxAmount, &p.ROI, &p.CompoundingRate, &p.DurationDays, &p.Description); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *Store) LoadBook(ctx context.Context, userID string) (*ledger.Snapshot, error) {
	snap := &ledger.Snapshot{}
	var err error
	if snap.Accounts, err = s.loadAccounts(ctx, userID); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if snap.Transactions, err = s.loadTransactions(ctx, userID); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if snap.Loans, err = s.loadLoans(ctx, userID); err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	if snap.Investments, err = s.loadInvestments(ctx, userID); err != nil {
		return nil, fmt.Errorf("load investments: %w", err)
	}
	return snap, nil
}

func (s *Store) loadAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, number, balance, version, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Number, &a.Balance, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) loadTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, status, description, metadata, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY seq`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Status, &tx.Description, &tx.Metadata, &tx.Date); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *Store) loadLoans(ctx context.Context, userID string) ([]models.Loan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, term_months, interest_rate, status, disbursed_to_account_id,
		       created_at, approved_at, rejected_at, repaid_at
		FROM loans
		WHERE user_id = $1
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Loan
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(&l.ID, &l.UserID, &l.Amount, &l.TermMonths, &l.InterestRate, &l.Status, &l.DisbursedToAccountID,
			&l.CreatedAt, &l.ApprovedAt, &l.RejectedAt, &l.RepaidAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) loadInvestments(ctx context.Context, userID string) ([]models.Investment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, plan_id, from_account_id, amount, expected_return, status, start_date, end_date, completed_at
		FROM investments
		WHERE user_id = $1
		ORDER BY start_date, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Investment
	for rows.Next() {
		var inv models.Investment
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.PlanID, &inv.FromAccountID, &inv.Amount, &inv.ExpectedReturn,
			&inv.Status, &inv.StartDate, &inv.EndDate, &inv.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Commit writes m inside one database transaction. Any failure rolls the
// whole mutation back.
func (s *Store) Commit(ctx context.Context, userID string, m *ledger.Mutation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if m.OpenedAccount != nil {
		if err := s.insertAccount(ctx, tx, m.OpenedAccount); err != nil {
			return err
		}
	}

	// Update accounts in a consistent order to prevent deadlocks
	accounts := make([]models.Account, len(m.Accounts))
	copy(accounts, m.Accounts)
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	for _, a := range accounts {
		if err := s.updateAccountBalance(ctx, tx, userID, &a); err != nil {
			return err
		}
	}

	if m.Transaction != nil {
		if err := s.insertTransaction(ctx, tx, m.Transaction); err != nil {
			return err
		}
	}
	if m.NewLoan != nil {
		if err := s.insertLoan(ctx, tx, m.NewLoan); err != nil {
			return err
		}
	}
	if m.UpdatedLoan != nil {
		if err := s.updateLoan(ctx, tx, userID, m.UpdatedLoan); err != nil {
			return err
		}
	}
	if m.NewInvestment != nil {
		if err := s.insertInvestment(ctx, tx, m.NewInvestment); err != nil {
			return err
		}
	}
	if m.UpdatedInvestment != nil {
		if err := s.updateInvestment(ctx, tx, userID, m.UpdatedInvestment); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "op": m.Op}).Debug("[LEDGER] Mutation committed")
	return nil
}

func (s *Store) insertAccount(ctx context.Context, tx *sql.Tx, a *models.Account) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, number, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.UserID, a.Name, a.Number, a.Balance, a.Version, a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *Store) updateAccountBalance(ctx context.Context, tx *sql.Tx, userID string, a *models.Account) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND version = $5`,
		a.Balance, a.UpdatedAt, a.ID, userID, a.Version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed for account %s", a.ID)
	}
	return nil
}

func (s *Store) insertTransaction(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, status, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, string(t.Type), t.Amount, t.Status, t.Description, t.Metadata, t.Date)
	return err
}

func (s *Store) insertLoan(ctx context.Context, tx *sql.Tx, l *models.Loan) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO loans (id, user_id, amount, term_months, interest_rate, status, disbursed_to_account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.UserID, l.Amount, l.TermMonths, l.InterestRate, string(l.Status), l.DisbursedToAccountID, l.CreatedAt)
	return err
}

func (s *Store) updateLoan(ctx context.Context, tx *sql.Tx, userID string, l *models.Loan) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE loans
		SET status = $1, approved_at = $2, rejected_at = $3, repaid_at = $4
		WHERE id = $5 AND user_id = $6`,
		string(l.Status), l.ApprovedAt, l.RejectedAt, l.RepaidAt, l.ID, userID)
	return expectOneRow(result, err, "loan", l.ID)
}

func (s *Store) insertInvestment(ctx context.Context, tx *sql.Tx, inv *models.Investment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO investments (id, user_id, plan_id, from_account_id, amount, expected_return, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.UserID, inv.PlanID, inv.FromAccountID, inv.Amount, inv.ExpectedReturn, inv.Status, inv.StartDate, inv.EndDate)
	return err
}

func (s *Store) updateInvestment(ctx context.Context, tx *sql.Tx, userID string, inv *models.Investment) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE investments
		SET status = $1, completed_at = $2
		WHERE id = $3 AND user_id = $4`,
		inv.Status, inv.CompletedAt, inv.ID, userID)
	return expectOneRow(result, err, "investment", inv.ID)
}

func expectOneRow(result sql.Result, err error, entity, id string) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s not found", entity, id)
	}
	return nil
}

func (s *Store) UsersWithDueInvestments(ctx context.Context, asOf time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT user_id
		FROM investments
		WHERE status = $1 AND end_date <= $2
		ORDER BY user_id`, models.InvestmentStatusActive, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
