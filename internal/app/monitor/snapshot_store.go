package monitor

import (
	"sync"
	"sync/atomic"

	"wallet_monitor/internal/domain/entity"
)

// SnapshotStore keeps the latest snapshot per task. Older snapshots are
// dropped on every swap. Keys never block each other.
type SnapshotStore struct {
	snapshots sync.Map // entity.TaskKey -> *entity.Snapshot
	writes    atomic.Uint64
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Get returns the latest snapshot for key.
func (s *SnapshotStore) Get(key entity.TaskKey) (*entity.Snapshot, bool) {
	v, ok := s.snapshots.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*entity.Snapshot), true
}

// Swap stores snapshot as the latest for key and returns exactly the value
// that was current before the write, or nil on the first write.
func (s *SnapshotStore) Swap(key entity.TaskKey, snapshot *entity.Snapshot) *entity.Snapshot {
	s.writes.Add(1)
	prev, loaded := s.snapshots.Swap(key, snapshot)
	if !loaded {
		return nil
	}
	return prev.(*entity.Snapshot)
}

// Range calls fn for every stored snapshot until fn returns false.
func (s *SnapshotStore) Range(fn func(key entity.TaskKey, snapshot *entity.Snapshot) bool) {
	s.snapshots.Range(func(k, v any) bool {
		return fn(k.(entity.TaskKey), v.(*entity.Snapshot))
	})
}

// Writes returns the number of swaps performed since creation.
func (s *SnapshotStore) Writes() uint64 {
	return s.writes.Load()
}
