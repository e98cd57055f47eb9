package intro

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by a Store that holds no record for a client.
	ErrNotFound = errors.New("intro record not found")
	// ErrCorruptRecord marks a stored record that cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt intro record")
)

// Record is the persisted intro-video counter of a single client.
type Record struct {
	Count     int       `json:"count"`
	LastReset time.Time `json:"lastReset"`
}

// wireRecord is the stored form: lastReset in epoch milliseconds.
type wireRecord struct {
	Count     *int   `json:"count"`
	LastReset *int64 `json:"lastReset"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	count := r.Count
	ms := r.LastReset.UnixMilli()
	return json.Marshal(wireRecord{Count: &count, LastReset: &ms})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if w.Count == nil || w.LastReset == nil {
		return fmt.Errorf("%w: missing field", ErrCorruptRecord)
	}
	if *w.Count < 0 || *w.LastReset <= 0 {
		return fmt.Errorf("%w: count=%d lastReset=%d", ErrCorruptRecord, *w.Count, *w.LastReset)
	}
	r.Count = *w.Count
	r.LastReset = time.UnixMilli(*w.LastReset)
	return nil
}

// Encode returns the stored form of r.
func Encode(r Record) ([]byte, error) {
	return json.Marshal(r)
}

// Decode parses a stored record. Any malformed input yields ErrCorruptRecord.
func Decode(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return r, nil
}
