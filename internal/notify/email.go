// Package notify emails users about ledger events that need their attention.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/primefinance/backend/internal/config"
	"github.com/primefinance/backend/internal/models"
)

// UserDirectory resolves a user id to a mailbox.
type UserDirectory interface {
	LookupEmail(ctx context.Context, userID string) (address, displayName string, err error)
}

// Sender handles sending emails via SMTP
type Sender struct {
	cfg   *config.SMTPConfig
	users UserDirectory
	log   logrus.FieldLogger
	send  func(e *email.Email) error
}

func NewSender(cfg *config.SMTPConfig, users UserDirectory, log logrus.FieldLogger) *Sender {
	s := &Sender{cfg: cfg, users: users, log: log}
	s.send = func(e *email.Email) error {
		addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
		var auth smtp.Auth
		if cfg.Username != "" {
			auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		}
		return e.Send(addr, auth)
	}
	return s
}

// Publish implements events.Sink. Only loan approvals and investment
// maturities produce mail.
func (s *Sender) Publish(ctx context.Context, event models.LedgerEvent) error {
	var subject, body string
	switch event.Type {
	case models.EventLoanApproved:
		subject = "Your loan has been approved"
		body = fmt.Sprintf("Your loan of %s has been approved and disbursed to your account.\n"+
			"Term: %v months at %v annual interest.\n",
			event.Amount.StringFixed(2), event.Details["termMonths"], formatRate(event.Details["interestRate"]))
	case models.EventInvestmentMatured:
		subject = "Your investment has matured"
		body = fmt.Sprintf("Your investment in plan %v has matured.\n"+
			"%s has been credited to your account.\n",
			event.Details["planId"], event.Amount.StringFixed(2))
	default:
		return nil
	}

	to, name, err := s.users.LookupEmail(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("lookup email for %s: %w", event.UserID, err)
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(fmt.Sprintf("Dear %s,\n\n%s\nTransaction time: %s\n\nBest regards,\nPrime Finance",
		name, body, event.OccurredAt.Format("2006-01-02 15:04:05")))

	if err := s.send(e); err != nil {
		s.log.WithError(err).Errorf("Failed to send email to %s", to)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func formatRate(v any) string {
	if rate, ok := v.(float64); ok {
		return fmt.Sprintf("%.1f%%", rate*100)
	}
	return fmt.Sprint(v)
}
