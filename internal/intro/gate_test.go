package intro

import (
	"context"
	"errors"
	"testing"
	"time"
)

var monday8 = time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

func TestDecide_NoRecord(t *testing.T) {
	show, rec := Decide(nil, monday8)
	if !show {
		t.Fatal("expected intro on first visit")
	}
	if rec.Count != 1 || !rec.LastReset.Equal(monday8) {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestDecide_SequenceWithinWindow(t *testing.T) {
	var prev *Record
	now := monday8

	wantShows := []bool{true, true, false, false}
	wantCounts := []int{1, 2, 2, 2}

	for i := range wantShows {
		show, rec := Decide(prev, now)
		if show != wantShows[i] {
			t.Fatalf("visit %d: show = %v, want %v", i+1, show, wantShows[i])
		}
		if rec.Count != wantCounts[i] {
			t.Fatalf("visit %d: count = %d, want %d", i+1, rec.Count, wantCounts[i])
		}
		if !rec.LastReset.Equal(monday8) {
			t.Fatalf("visit %d: lastReset moved to %s", i+1, rec.LastReset)
		}
		prev = &rec
		now = now.Add(time.Hour)
	}
}

func TestDecide_ExpiredWindowResets(t *testing.T) {
	for _, count := range []int{0, 1, 2, 7} {
		prev := &Record{Count: count, LastReset: monday8}
		now := monday8.Add(12 * time.Hour)

		show, rec := Decide(prev, now)
		if !show {
			t.Fatalf("count %d: expected intro after window", count)
		}
		if rec.Count != 1 || !rec.LastReset.Equal(now) {
			t.Fatalf("count %d: expected reset record, got %+v", count, rec)
		}
	}
}

func TestDecide_JustBeforeWindowEnd(t *testing.T) {
	prev := &Record{Count: 2, LastReset: monday8}
	show, rec := Decide(prev, monday8.Add(12*time.Hour-time.Millisecond))
	if show {
		t.Fatal("expected no intro before the window elapses")
	}
	if rec != *prev {
		t.Fatalf("record changed: %+v", rec)
	}
}

func TestDecide_MondayScenario(t *testing.T) {
	prev := &Record{Count: 2, LastReset: monday8}

	evening := time.Date(2024, time.January, 1, 19, 59, 0, 0, time.UTC)
	show, rec := Decide(prev, evening)
	if show {
		t.Fatal("expected no intro at 19:59")
	}
	if rec.Count != 2 || !rec.LastReset.Equal(monday8) {
		t.Fatalf("record changed at 19:59: %+v", rec)
	}

	later := time.Date(2024, time.January, 1, 20, 1, 0, 0, time.UTC)
	show, rec = Decide(&rec, later)
	if !show {
		t.Fatal("expected intro at 20:01")
	}
	if rec.Count != 1 || !rec.LastReset.Equal(later) {
		t.Fatalf("expected reset at 20:01, got %+v", rec)
	}
}

func TestPolicy_CapsOversizedCount(t *testing.T) {
	p := Policy{Window: time.Hour, MaxShows: 2}
	d := p.Decide(&Record{Count: 5, LastReset: monday8}, monday8.Add(time.Minute))
	if d.Show {
		t.Fatal("expected no intro")
	}
	if d.Record.Count != 2 || !d.Changed {
		t.Fatalf("expected count capped to 2, got %+v", d)
	}
}

func TestPolicy_ZeroValueUsesDefaults(t *testing.T) {
	d := Policy{}.Decide(&Record{Count: 2, LastReset: monday8}, monday8.Add(11*time.Hour))
	if d.Show {
		t.Fatal("zero policy should behave as 12h / 2 shows")
	}
}

func TestPolicy_Custom(t *testing.T) {
	p := Policy{Window: time.Hour, MaxShows: 3}
	prev := &Record{Count: 2, LastReset: monday8}
	d := p.Decide(prev, monday8.Add(30*time.Minute))
	if !d.Show || d.Record.Count != 3 {
		t.Fatalf("expected third show, got %+v", d)
	}
	d = p.Decide(&d.Record, monday8.Add(time.Hour))
	if !d.Show || d.Record.Count != 1 {
		t.Fatalf("expected reset after one hour, got %+v", d)
	}
}

func TestGate_CheckPersists(t *testing.T) {
	store := NewMemoryStore()
	now := monday8
	gate := NewGate(store, DefaultPolicy()).WithClock(func() time.Time { return now })
	ctx := context.Background()

	want := []bool{true, true, false}
	for i, w := range want {
		if got := gate.Check(ctx, "visitor-1").Show; got != w {
			t.Fatalf("visit %d: show = %v, want %v", i+1, got, w)
		}
		now = now.Add(10 * time.Minute)
	}

	rec, err := store.Load(ctx, "visitor-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Count != 2 || !rec.LastReset.Equal(monday8) {
		t.Fatalf("unexpected stored record %+v", rec)
	}

	if !gate.Check(ctx, "visitor-2").Show {
		t.Fatal("other visitors keep their own counter")
	}

	now = monday8.Add(13 * time.Hour)
	if !gate.Check(ctx, "visitor-1").Show {
		t.Fatal("expected intro after the window")
	}
	rec, _ = store.Load(ctx, "visitor-1")
	if rec.Count != 1 || !rec.LastReset.Equal(now) {
		t.Fatalf("expected reset record, got %+v", rec)
	}
}

func TestGate_CorruptRecordTreatedAsAbsent(t *testing.T) {
	store := NewMemoryStore()
	store.Put("visitor", []byte(`{"count":"two"`))
	gate := NewGate(store, DefaultPolicy()).WithClock(func() time.Time { return monday8 })

	d := gate.Check(context.Background(), "visitor")
	if !d.Show || d.Record.Count != 1 {
		t.Fatalf("expected fresh record, got %+v", d)
	}

	rec, err := store.Load(context.Background(), "visitor")
	if err != nil {
		t.Fatalf("corrupt record was not replaced: %v", err)
	}
	if rec.Count != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

type failingStore struct {
	loadErr error
	saveErr error
	saved   int
}

func (f *failingStore) Load(context.Context, string) (Record, error) { return Record{}, f.loadErr }

func (f *failingStore) Save(context.Context, string, Record) error {
	f.saved++
	return f.saveErr
}

func TestGate_StorageErrorsDoNotFail(t *testing.T) {
	store := &failingStore{loadErr: errors.New("connection refused"), saveErr: errors.New("connection refused")}
	gate := NewGate(store, DefaultPolicy())

	d := gate.Check(context.Background(), "visitor")
	if !d.Show {
		t.Fatal("expected intro when storage is unavailable")
	}
	if store.saved != 0 {
		t.Fatalf("unreadable store must not be overwritten, got %d saves", store.saved)
	}
}

func TestGate_SaveErrorOnlyLogged(t *testing.T) {
	store := &failingStore{loadErr: ErrNotFound, saveErr: errors.New("connection refused")}
	gate := NewGate(store, DefaultPolicy())

	d := gate.Check(context.Background(), "visitor")
	if !d.Show || store.saved != 1 {
		t.Fatalf("show=%v saves=%d, want true and 1", d.Show, store.saved)
	}
}

// flakyStore fails the next Load once, then behaves like the wrapped store.
type flakyStore struct {
	Store
	failNext bool
}

func (f *flakyStore) Load(ctx context.Context, id string) (Record, error) {
	if f.failNext {
		f.failNext = false
		return Record{}, errors.New("i/o timeout")
	}
	return f.Store.Load(ctx, id)
}

func TestGate_TransientLoadErrorKeepsWindow(t *testing.T) {
	mem := NewMemoryStore()
	_ = mem.Save(context.Background(), "v", Record{Count: 2, LastReset: monday8})
	store := &flakyStore{Store: mem, failNext: true}

	now := monday8.Add(2 * time.Hour)
	gate := NewGate(store, DefaultPolicy()).WithClock(func() time.Time { return now })

	if !gate.Check(context.Background(), "v").Show {
		t.Fatal("expected intro while the store is unreadable")
	}

	rec, err := mem.Load(context.Background(), "v")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Count != 2 || !rec.LastReset.Equal(monday8) {
		t.Fatalf("stored record was overwritten: %+v", rec)
	}

	for _, offset := range []time.Duration{3 * time.Hour, 11 * time.Hour} {
		now = monday8.Add(offset)
		if gate.Check(context.Background(), "v").Show {
			t.Fatalf("intro shown again at +%v within the exhausted window", offset)
		}
	}
}

func TestGate_UnchangedRecordNotSaved(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Save(context.Background(), "v", Record{Count: 2, LastReset: monday8})

	counting := &countingStore{Store: store}
	gate := NewGate(counting, DefaultPolicy()).WithClock(func() time.Time { return monday8.Add(time.Hour) })

	if gate.Check(context.Background(), "v").Show {
		t.Fatal("expected no intro")
	}
	if counting.saves != 0 {
		t.Fatalf("expected no save, got %d", counting.saves)
	}
}

type countingStore struct {
	Store
	saves int
}

func (c *countingStore) Save(ctx context.Context, id string, rec Record) error {
	c.saves++
	return c.Store.Save(ctx, id, rec)
}
