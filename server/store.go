package server

import (
	"sort"
	"sync"

	"github.com/nettap/topoviz/models"
)

// SnapshotStore keeps ingested snapshots in memory, keyed by snapshot ID.
// It is handed to the server explicitly so ownership and teardown are the
// caller's, not a package-level singleton's.
type SnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]*models.Snapshot
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snaps: make(map[string]*models.Snapshot)}
}

// Put stores a snapshot under its ID.
func (s *SnapshotStore) Put(snap *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.ID] = snap
}

// Get returns the snapshot with the given ID.
func (s *SnapshotStore) Get(id string) (*models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[id]
	return snap, ok
}

// Delete removes a snapshot.
func (s *SnapshotStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, id)
}

// IDs returns the stored snapshot IDs in sorted order.
func (s *SnapshotStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snaps))
	for id := range s.snaps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored snapshots.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snaps)
}
