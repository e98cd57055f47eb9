package mailer

import (
	"context"

	"github.com/diagnosis/salvatore-shoes/pkg/config"
)

// Email is a single outgoing message.
type Email struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Service delivers an email and returns the provider message id when known.
type Service interface {
	Send(ctx context.Context, e Email) (string, error)
}

// FromConfig picks the dev logger, MailerSend or SMTP, in that order.
func FromConfig(c config.EmailConfig) Service {
	switch {
	case c.DevMode:
		return NewDevMailer()
	case c.MailerSendKey != "":
		return NewMailer(c.MailerSendKey, c.FromName, c.SMTPFrom)
	default:
		return NewSMTPMailer(c.SMTPHost, c.SMTPPort, c.SMTPFrom, c.SMTPUser, c.SMTPPass, c.SMTPUseTLS)
	}
}
