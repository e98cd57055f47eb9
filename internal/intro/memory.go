package intro

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory, encoded the same way the
// durable stores encode them.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, clientID string) (Record, error) {
	m.mu.Lock()
	raw, ok := m.data[clientID]
	m.mu.Unlock()

	if !ok {
		return Record{}, ErrNotFound
	}
	return Decode(raw)
}

func (m *MemoryStore) Save(_ context.Context, clientID string, rec Record) error {
	raw, err := Encode(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[clientID] = raw
	m.mu.Unlock()
	return nil
}

// Put stores raw bytes as-is. Lets tests plant corrupt values.
func (m *MemoryStore) Put(clientID string, raw []byte) {
	m.mu.Lock()
	m.data[clientID] = append([]byte(nil), raw...)
	m.mu.Unlock()
}

var _ Store = (*MemoryStore)(nil)
