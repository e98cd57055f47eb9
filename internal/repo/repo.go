package repo

import (
	"context"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/domain"
)

type QuoteRepo interface {
	CreateQuote(ctx context.Context, q *domain.QuoteRequest) error
}

type ContactRepo interface {
	CreateContact(ctx context.Context, m *domain.ContactMessage) error
}

// RateLimitRepo counts requests per key in fixed windows.
type RateLimitRepo interface {
	// CheckRateLimit records one request for key and reports whether it is
	// within the allowed number for the current window.
	CheckRateLimit(ctx context.Context, key string, requests int, window time.Duration) (bool, error)
	CleanupExpired(ctx context.Context) (int64, error)
}
