package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/diagnosis/salvatore-shoes/internal/intro"
	goredis "github.com/redis/go-redis/v9"
)

// IntroKeyPrefix matches the browser storage key the site used for the record.
const IntroKeyPrefix = "salvatoreVideoIntro:"

// IntroRepo keeps one JSON string per visitor, without expiry: the record
// rolls over through the gate's window logic.
type IntroRepo struct {
	client goredis.Cmdable
}

func NewIntroRepo(client goredis.Cmdable) *IntroRepo {
	return &IntroRepo{client: client}
}

func (r *IntroRepo) Load(ctx context.Context, visitorID string) (intro.Record, error) {
	raw, err := r.client.Get(ctx, IntroKeyPrefix+visitorID).Bytes()
	if errors.Is(err, goredis.Nil) {
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
	if err := r.client.Set(ctx, IntroKeyPrefix+visitorID, raw, 0).Err(); err != nil {
		return fmt.Errorf("save intro record: %w", err)
	}
	return nil
}

var _ intro.Store = (*IntroRepo)(nil)
