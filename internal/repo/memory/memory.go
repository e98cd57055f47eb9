// Package memory holds in-process repositories used when no database is
// configured and in tests.
package memory

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/domain"
	"github.com/diagnosis/salvatore-shoes/internal/repo"
	"github.com/diagnosis/salvatore-shoes/pkg/middleware"
	"github.com/google/uuid"
)

type QuoteRepo struct {
	mu     sync.Mutex
	quotes []domain.QuoteRequest
}

func NewQuoteRepo() *QuoteRepo { return &QuoteRepo{} }

func (r *QuoteRepo) CreateQuote(_ context.Context, q *domain.QuoteRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = time.Now().UTC()
	r.quotes = append(r.quotes, *q)
	return nil
}

// List returns a copy of the stored quotes in insertion order.
func (r *QuoteRepo) List() []domain.QuoteRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.QuoteRequest(nil), r.quotes...)
}

type ContactRepo struct {
	mu       sync.Mutex
	messages []domain.ContactMessage
}

func NewContactRepo() *ContactRepo { return &ContactRepo{} }

func (r *ContactRepo) CreateContact(_ context.Context, m *domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *ContactRepo) List() []domain.ContactMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ContactMessage(nil), r.messages...)
}

type window struct {
	count int
	start time.Time
	ttl   time.Duration
}

// RateLimitRepo is a fixed-window counter keyed by the hashed key.
type RateLimitRepo struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewRateLimitRepo() *RateLimitRepo {
	return &RateLimitRepo{windows: make(map[string]*window), now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (r *RateLimitRepo) WithClock(now func() time.Time) *RateLimitRepo {
	r.now = now
	return r
}

func (r *RateLimitRepo) CheckRateLimit(_ context.Context, key string, requests int, ttl time.Duration) (bool, error) {
	hashedKey := fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[hashedKey]
	if !ok || !now.Before(w.start.Add(w.ttl)) {
		w = &window{start: now, ttl: ttl}
		r.windows[hashedKey] = w
	}
	w.count++
	return w.count <= requests, nil
}

func (r *RateLimitRepo) CleanupExpired(context.Context) (int64, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for k, w := range r.windows {
		if !now.Before(w.start.Add(w.ttl)) {
			delete(r.windows, k)
			removed++
		}
	}
	return removed, nil
}

type entry struct {
	value     string
	expiresAt time.Time
}

type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: make(map[string]entry)}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", nil
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", nil
	}
	return e.value, nil
}

func (s *IdempotencyStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *IdempotencyStore) CleanupExpired(context.Context) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

var (
	_ repo.QuoteRepo              = (*QuoteRepo)(nil)
	_ repo.ContactRepo            = (*ContactRepo)(nil)
	_ repo.RateLimitRepo          = (*RateLimitRepo)(nil)
	_ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
)
