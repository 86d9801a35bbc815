// Package memory holds the served attendance snapshot in process memory.
package memory

import (
	"sync/atomic"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
)

type snapshotStore struct {
	current atomic.Pointer[attendance.Snapshot]
}

// NewSnapshotStore returns an empty store. Replace swaps the whole snapshot
// at once, so readers see either the old or the new one.
func NewSnapshotStore() attendance.SnapshotStore {
	return &snapshotStore{}
}

// Current implements attendance.SnapshotStore.
func (s *snapshotStore) Current() (*attendance.Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Replace implements attendance.SnapshotStore.
func (s *snapshotStore) Replace(snapshot *attendance.Snapshot) {
	s.current.Store(snapshot)
}
