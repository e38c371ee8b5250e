// Package audit writes the ledger's audit trail as structured log records.
package audit

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/primefinance/backend/internal/ledger"
)

type AuditEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	AccountIDs    []string  `json:"account_ids,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Status        string    `json:"status"`
	Details       any       `json:"details,omitempty"`
}

// AuditLogger implements ledger.Auditor on top of a logrus logger.
type AuditLogger struct {
	log logrus.FieldLogger
	now func() time.Time
}

func NewAuditLogger(log logrus.FieldLogger) *AuditLogger {
	return &AuditLogger{log: log, now: time.Now}
}

func (a *AuditLogger) LogMutation(userID, op, transactionID string, m *ledger.Mutation) {
	event := AuditEvent{
		Timestamp:     a.now(),
		EventType:     op,
		UserID:        userID,
		TransactionID: transactionID,
		Status:        "SUCCESS",
	}
	if m.OpenedAccount != nil {
		event.AccountIDs = append(event.AccountIDs, m.OpenedAccount.ID)
	}
	for _, acc := range m.Accounts {
		event.AccountIDs = append(event.AccountIDs, acc.ID)
	}
	if m.Transaction != nil {
		event.Amount = m.Transaction.Amount.String()
	}
	details := map[string]string{}
	if m.NewLoan != nil {
		details["loan_id"] = m.NewLoan.ID
		details["loan_status"] = string(m.NewLoan.Status)
	}
	if m.UpdatedLoan != nil {
		details["loan_id"] = m.UpdatedLoan.ID
		details["loan_status"] = string(m.UpdatedLoan.Status)
	}
	if m.NewInvestment != nil {
		details["investment_id"] = m.NewInvestment.ID
		details["investment_status"] = m.NewInvestment.Status
	}
	if m.UpdatedInvestment != nil {
		details["investment_id"] = m.UpdatedInvestment.ID
		details["investment_status"] = m.UpdatedInvestment.Status
	}
	if len(details) > 0 {
		event.Details = details
	}
	a.write(event)
}

func (a *AuditLogger) LogError(userID, op string, err error) {
	event := AuditEvent{
		Timestamp: a.now(),
		EventType: op,
		UserID:    userID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	}
	a.write(event)
}

func (a *AuditLogger) write(event AuditEvent) {
	entry := a.log.WithFields(logrus.Fields{
		"audit":      true,
		"event_type": event.EventType,
		"user_id":    event.UserID,
		"status":     event.Status,
	})
	if event.TransactionID != "" {
		entry = entry.WithField("transaction_id", event.TransactionID)
	}
	if len(event.AccountIDs) > 0 {
		entry = entry.WithField("account_ids", event.AccountIDs)
	}
	if event.Amount != "" {
		entry = entry.WithField("amount", event.Amount)
	}
	if event.Details != nil {
		entry = entry.WithField("details", event.Details)
	}
	if event.Status == "FAILED" {
		entry.Warn("AUDIT")
		return
	}
	entry.Info("AUDIT")
}
