package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/intro"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx is the part of *pgxpool.Pool the intro repo needs.
type dbtx interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// IntroRepo stores intro-gate records as JSONB in the stored wire form.
type IntroRepo struct {
	pool dbtx
}

func NewIntroRepo(pool dbtx) *IntroRepo {
	return &IntroRepo{pool: pool}
}

func (r *IntroRepo) Load(ctx context.Context, visitorID string) (intro.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT record FROM intro_gate WHERE visitor_id = $1`, visitorID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return intro.Record{}, intro.ErrNotFound
	}
	if err != nil {
		return intro.Record{}, fmt.Errorf("load intro record: %w", err)
	}
	return intro.Decode(raw)
}

func (r *IntroRepo) Save(ctx context.Context, visitorID string, rec intro.Record) error {
	raw, err := intro.Encode(rec)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	const q = `
		INSERT INTO intro_gate (visitor_id, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (visitor_id) DO UPDATE SET
			record = EXCLUDED.record,
			updated_at = now()`
	if _, err := r.pool.Exec(ctx, q, visitorID, raw); err != nil {
		return fmt.Errorf("save intro record: %w", err)
	}
	return nil
}

var _ intro.Store = (*IntroRepo)(nil)
