package intro

import (
	"context"
	"errors"
	"time"

	"github.com/diagnosis/salvatore-shoes/pkg/logger"
)

const (
	DefaultWindow   = 12 * time.Hour
	DefaultMaxShows = 2
)

// Policy bounds how often the intro is shown: at most MaxShows times within
// Window of the record's LastReset.
type Policy struct {
	Window   time.Duration
	MaxShows int
}

func DefaultPolicy() Policy {
	return Policy{Window: DefaultWindow, MaxShows: DefaultMaxShows}
}

func (p Policy) normalized() Policy {
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	if p.MaxShows <= 0 {
		p.MaxShows = DefaultMaxShows
	}
	return p
}

// Decision is the outcome of one page load.
type Decision struct {
	Show   bool
	Record Record
	// Changed is false when the stored record does not need to be rewritten.
	Changed bool
}

// Decide applies the policy to the previous record (nil when the client has
// none) at now.
func (p Policy) Decide(prev *Record, now time.Time) Decision {
	p = p.normalized()

	if prev == nil {
		return Decision{Show: true, Record: Record{Count: 1, LastReset: now}, Changed: true}
	}
	if now.Sub(prev.LastReset) >= p.Window {
		return Decision{Show: true, Record: Record{Count: 1, LastReset: now}, Changed: true}
	}
	if prev.Count < p.MaxShows {
		return Decision{Show: true, Record: Record{Count: prev.Count + 1, LastReset: prev.LastReset}, Changed: true}
	}
	if prev.Count > p.MaxShows {
		// A lowered MaxShows leaves older records above the cap.
		return Decision{Show: false, Record: Record{Count: p.MaxShows, LastReset: prev.LastReset}, Changed: true}
	}
	return Decision{Show: false, Record: *prev}
}

// Decide applies the default policy.
func Decide(prev *Record, now time.Time) (bool, Record) {
	d := DefaultPolicy().Decide(prev, now)
	return d.Show, d.Record
}

// Store persists one record per client.
type Store interface {
	// Load returns ErrNotFound when the client has no record and
	// ErrCorruptRecord when the stored value cannot be decoded.
	Load(ctx context.Context, clientID string) (Record, error)
	Save(ctx context.Context, clientID string, rec Record) error
}

// Gate decides, per client, whether the intro video is shown on a page load.
type Gate struct {
	store  Store
	policy Policy
	now    func() time.Time
}

func NewGate(store Store, policy Policy) *Gate {
	return &Gate{store: store, policy: policy.normalized(), now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	cp := *g
	cp.now = now
	return &cp
}

func (g *Gate) Policy() Policy { return g.policy }

// Check loads the client's record, decides and saves the result. Storage
// problems never fail a page load: a missing or corrupt record counts as
// absent, and a failed save is only logged. When the store cannot be read at
// all the intro is shown but nothing is saved, so a stored record survives a
// transient outage.
func (g *Gate) Check(ctx context.Context, clientID string) Decision {
	var prev *Record
	loadFailed := false

	rec, err := g.store.Load(ctx, clientID)
	switch {
	case err == nil:
		prev = &rec
	case errors.Is(err, ErrNotFound):
	case errors.Is(err, ErrCorruptRecord):
		logger.WarnContext(ctx, "Discarding corrupt intro record", "error", err)
	default:
		logger.ErrorContext(ctx, "Failed to load intro record", "error", err)
		loadFailed = true
	}

	d := g.policy.Decide(prev, g.now())
	if loadFailed {
		d.Changed = false
		return d
	}
	if d.Changed {
		if err := g.store.Save(ctx, clientID, d.Record); err != nil {
			logger.ErrorContext(ctx, "Failed to save intro record", "error", err)
		}
	}
	return d
}
