package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/platform/mailer"
	"github.com/diagnosis/salvatore-shoes/pkg/events"
	"github.com/diagnosis/salvatore-shoes/pkg/logger"
)

// Notifier mails the shop about quote requests and contact messages.
type Notifier struct {
	mail      mailer.Service
	shopEmail string
}

func New(mail mailer.Service, shopEmail string) *Notifier {
	return &Notifier{mail: mail, shopEmail: shopEmail}
}

func (n *Notifier) QuoteRequested(ctx context.Context, ev events.QuoteRequestedEvent) error {
	date := "sin preferencia"
	if ev.PreferredDate != nil {
		date = ev.PreferredDate.Format("02/01/2006")
	}
	rows := [][2]string{
		{"Nombre", ev.Name},
		{"Teléfono", ev.Phone},
		{"Fecha preferida", date},
		{"Comentarios", ev.Comments},
		{"Referencia", ev.QuoteID},
	}

	_, err := n.mail.Send(ctx, mailer.Email{
		To:      n.shopEmail,
		Subject: "Nueva solicitud de presupuesto: " + ev.Name,
		Text:    textBody(rows),
		HTML:    htmlBody("Nueva solicitud de presupuesto", rows),
	})
	if err != nil {
		return fmt.Errorf("send quote notification: %w", err)
	}
	return nil
}

func (n *Notifier) ContactReceived(ctx context.Context, ev events.ContactReceivedEvent) error {
	rows := [][2]string{
		{"Nombre", ev.Name},
		{"Email", ev.Email},
		{"Teléfono", ev.Phone},
		{"Mensaje", ev.Message},
		{"Referencia", ev.ContactID},
	}

	_, err := n.mail.Send(ctx, mailer.Email{
		To:      n.shopEmail,
		ReplyTo: ev.Email,
		Subject: "Nuevo mensaje de contacto: " + ev.Name,
		Text:    textBody(rows),
		HTML:    htmlBody("Nuevo mensaje de contacto", rows),
	})
	if err != nil {
		return fmt.Errorf("send contact notification: %w", err)
	}
	return nil
}

// Handle consumes a bus message. Unknown subjects are ignored.
func (n *Notifier) Handle(msg *events.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch msg.Subject {
	case events.QuoteRequested:
		var ev events.QuoteRequestedEvent
		if err = json.Unmarshal(msg.Data, &ev); err == nil {
			err = n.QuoteRequested(ctx, ev)
		}
	case events.ContactReceived:
		var ev events.ContactReceivedEvent
		if err = json.Unmarshal(msg.Data, &ev); err == nil {
			err = n.ContactReceived(ctx, ev)
		}
	default:
		logger.Debug("Ignoring event", "subject", msg.Subject)
		return
	}

	if err != nil {
		logger.Error("Failed to handle event", "subject", msg.Subject, "id", msg.ID, "error", err)
	}
}

func textBody(rows [][2]string) string {
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s: %s\n", r[0], r[1])
	}
	return b.String()
}

func htmlBody(title string, rows [][2]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2><table>", html.EscapeString(title))
	for _, r := range rows {
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", html.EscapeString(r[0]), html.EscapeString(r[1]))
	}
	b.WriteString("</table>")
	return b.String()
}
