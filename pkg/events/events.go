package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/salvatore-shoes/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url, nats.Name("salvatore-shoes"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := encode(ctx, subject, data)
	if err != nil {
		return err
	}
	return n.conn.Publish(subject, payload)
}

// encode marshals an event. Payloads carry visitor contact details, so only
// the subject and size are logged.
func encode(ctx context.Context, subject string, data interface{}) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "bytes", len(payload))
	return payload, nil
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

// Drain flushes pending publishes before closing.
func (n *NATSEventBus) Close() error {
	return n.conn.Drain()
}

// NoopPublisher discards events. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, _ interface{}) error {
	logger.DebugContext(ctx, "Event bus disabled, dropping event", "subject", subject)
	return nil
}

func (NoopPublisher) Close() error { return nil }

const (
	IntroDecided    = "site.intro.decided"
	ChatRelayed     = "site.chat.relayed"
	QuoteRequested  = "site.quote.requested"
	ContactReceived = "site.contact.received"
)

type IntroDecidedEvent struct {
	VisitorID string    `json:"visitor_id"`
	Shown     bool      `json:"shown"`
	Count     int       `json:"count"`
	LastReset time.Time `json:"last_reset"`
	DecidedAt time.Time `json:"decided_at"`
}

type ChatRelayedEvent struct {
	Model      string    `json:"model"`
	HistoryLen int       `json:"history_len"`
	Failed     bool      `json:"failed"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	At         time.Time `json:"at"`
}

type QuoteRequestedEvent struct {
	QuoteID       string     `json:"quote_id"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	Comments      string     `json:"comments"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ContactReceivedEvent struct {
	ContactID string    `json:"contact_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

var _ EventBus = (*NATSEventBus)(nil)
