package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultHistoryLimit = 10

	// FallbackReply is sent when the upstream returns no content.
	FallbackReply = "Lo siento, no pude procesar tu mensaje."
)

var ErrEmptyMessage = errors.New("message is required")

// Message is one turn of the conversation as the widget sends it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is what a Completer sends upstream: the system prompt
// followed by the conversation, newest last.
type CompletionRequest struct {
	System   string
	Messages []Message
}

// Completer produces the assistant's next turn.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Relay forwards a visitor message, with recent history, to the completer
// under a fixed system prompt.
type Relay struct {
	completer    Completer
	system       string
	historyLimit int
}

func NewRelay(completer Completer, systemPrompt string, historyLimit int) *Relay {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Relay{completer: completer, system: systemPrompt, historyLimit: historyLimit}
}

func (r *Relay) HistoryLimit() int { return r.historyLimit }

// Reply returns the assistant's answer to message.
func (r *Relay) Reply(ctx context.Context, message string, history []Message) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	req := CompletionRequest{
		System:   r.system,
		Messages: BuildConversation(history, message, r.historyLimit),
	}

	reply, err := r.completer.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackReply, nil
	}
	return reply, nil
}

// BuildConversation keeps the last limit entries of history, drops entries
// whose role is neither user nor assistant, and appends message as a user turn.
func BuildConversation(history []Message, message string, limit int) []Message {
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	out := make([]Message, 0, len(history)+1)
	for _, m := range history {
		switch m.Role {
		case RoleUser, RoleAssistant:
			out = append(out, Message{Role: m.Role, Content: m.Content})
		}
	}
	return append(out, Message{Role: RoleUser, Content: message})
}
