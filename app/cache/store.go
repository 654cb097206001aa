// Package cache keeps the last successfully extracted record set in memory.
package cache

import (
	"sync"
	"time"

	"github.com/lysyi3m/drama-comb/app/drama"
)

// Store holds one snapshot. Writes and clears replace it wholesale, so a
// reader never sees records paired with another run's timestamp.
type Store struct {
	snapshot drama.Snapshot
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{}
}

// Read returns the current snapshot. The records slice must be treated as
// read-only; it is shared with every other reader.
func (s *Store) Read() drama.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Store) Write(records []drama.Record, fetchedAt time.Time) {
	snapshot := drama.Snapshot{
		Records:   make([]drama.Record, len(records)),
		FetchedAt: fetchedAt,
	}
	for i, r := range records {
		snapshot.Records[i] = r.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = drama.Snapshot{}
}
