package mailer

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/tours-service/internal/config"
)

// ErrNoRecipients is returned for an email without a To address.
var ErrNoRecipients = errors.New("no recipients specified")

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// Sender delivers emails.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// Mailer sends email over SMTP.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewMailer creates a new SMTP Mailer.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// Send sends a single email. gomail has no context support, so cancellation is only
// honored before dialing.
func (m *Mailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	m.setEmailMessage(msg, email)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Warn("email delivery failed",
			zap.Strings("to", email.To),
			zap.String("subject", email.Subject),
			zap.Error(err))
		return err
	}
	m.logger.Debug("email sent", zap.Strings("to", email.To), zap.String("subject", email.Subject))
	return nil
}

func (m *Mailer) setEmailMessage(msg *gomail.Message, email Email) {
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}
}
