package statusstore

import (
	"sync"
	"time"

	"github.com/kilianp07/pvcharge/core/control"
)

// Snapshot is the latest known state of the controller, served by the API.
type Snapshot struct {
	control.CycleResult
	// Updated is when the snapshot was stored, as opposed to the cycle time.
	Updated time.Time `json:"updated"`
}

// Store holds the most recent control cycle result.
type Store interface {
	Set(control.CycleResult)
	Latest() (Snapshot, bool)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	snap Snapshot
	set  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(res control.CycleResult) {
	s.mu.Lock()
	s.snap = Snapshot{CycleResult: res, Updated: time.Now().UTC()}
	s.set = true
	s.mu.Unlock()
}

// Latest returns the stored snapshot; ok is false before the first cycle.
func (s *MemoryStore) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.set
}
