package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/domain"
	"github.com/diagnosis/salvatore-shoes/internal/repo"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuoteRepoImpl struct {
	pool *pgxpool.Pool
}

func NewQuoteRepo(pool *pgxpool.Pool) *QuoteRepoImpl {
	return &QuoteRepoImpl{pool: pool}
}

func (r *QuoteRepoImpl) CreateQuote(ctx context.Context, q *domain.QuoteRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	const query = `
		INSERT INTO quote_requests (id, name, phone, comments, preferred_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	if err := r.pool.QueryRow(ctx, query, q.ID, q.Name, q.Phone, q.Comments, q.PreferredDate).Scan(&q.CreatedAt); err != nil {
		return fmt.Errorf("insert quote request: %w", err)
	}
	return nil
}

type ContactRepoImpl struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepoImpl {
	return &ContactRepoImpl{pool: pool}
}

func (r *ContactRepoImpl) CreateContact(ctx context.Context, m *domain.ContactMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	const query = `
		INSERT INTO contact_messages (id, name, email, phone, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	if err := r.pool.QueryRow(ctx, query, m.ID, m.Name, m.Email, m.Phone, m.Message).Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}

var (
	_ repo.QuoteRepo   = (*QuoteRepoImpl)(nil)
	_ repo.ContactRepo = (*ContactRepoImpl)(nil)
)
