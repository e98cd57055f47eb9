package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/intro"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	raw []byte
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.raw
	return nil
}

// fakeDB keeps intro_gate rows in a map keyed by visitor id.
type fakeDB struct {
	rows map[string][]byte
	err  error
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	raw, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{raw: raw}
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	f.rows[args[0].(string)] = args[1].([]byte)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestIntroRepo_RoundTrip(t *testing.T) {
	db := &fakeDB{rows: map[string][]byte{}}
	r := NewIntroRepo(db)
	reset := time.UnixMilli(1704096000000)

	if err := r.Save(context.Background(), "v-1", intro.Record{Count: 1, LastReset: reset}); err != nil {
		t.Fatal(err)
	}
	if got := string(db.rows["v-1"]); got != `{"count":1,"lastReset":1704096000000}` {
		t.Fatalf("stored %s", got)
	}

	rec, err := r.Load(context.Background(), "v-1")
	if err != nil || rec.Count != 1 || !rec.LastReset.Equal(reset) {
		t.Fatalf("loaded %+v, %v", rec, err)
	}
}

func TestIntroRepo_LoadErrors(t *testing.T) {
	db := &fakeDB{rows: map[string][]byte{"bad": []byte(`{"count":-1,"lastReset":5}`)}}
	r := NewIntroRepo(db)

	if _, err := r.Load(context.Background(), "missing"); !errors.Is(err, intro.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := r.Load(context.Background(), "bad"); !errors.Is(err, intro.ErrCorruptRecord) {
		t.Fatalf("got %v, want ErrCorruptRecord", err)
	}

	db.err = errors.New("timeout")
	if _, err := r.Load(context.Background(), "v"); err == nil || errors.Is(err, intro.ErrNotFound) {
		t.Fatalf("got %v, want storage error", err)
	}
}
