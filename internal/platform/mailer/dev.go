package mailer

import (
	"context"

	"github.com/diagnosis/salvatore-shoes/pkg/logger"
	"github.com/google/uuid"
)

// DevMailer logs emails instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(ctx context.Context, e Email) (string, error) {
	id := "dev-" + uuid.NewString()
	logger.InfoContext(ctx, "📧 [DEV MAIL]",
		"message_id", id,
		"to", e.To,
		"reply_to", e.ReplyTo,
		"subject", e.Subject,
		"text", e.Text,
	)
	return id, nil
}

var _ Service = (*DevMailer)(nil)
