package instruments

import (
	"context"
	"sync"
	"time"

	"TigerChart/internal/model"
)

// Entry is a stored instrument list and the time it was fetched.
type Entry struct {
	Instruments []model.Instrument
	FetchedAt   time.Time
}

// Store persists the most recent instrument list.
type Store interface {
	// Load returns the stored entry; ok is false when nothing is stored.
	Load(ctx context.Context) (entry Entry, ok bool, err error)
	Save(ctx context.Context, entry Entry) error
	Clear(ctx context.Context) error
	Close() error
}

// MemoryStore keeps the entry in process memory. Used when SQLite is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	entry *Entry
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(_ context.Context) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entry == nil {
		return Entry{}, false, nil
	}
	return Entry{Instruments: clone(m.entry.Instruments), FetchedAt: m.entry.FetchedAt}, true, nil
}

func (m *MemoryStore) Save(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = &Entry{Instruments: clone(entry.Instruments), FetchedAt: entry.FetchedAt}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func clone(in []model.Instrument) []model.Instrument {
	out := make([]model.Instrument, len(in))
	copy(out, in)
	return out
}
