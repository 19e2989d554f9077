package aggregator

import (
	"sort"
	"sync"

	"barriometrics/server/internal/models"
)

// SnapshotKey identifies one derived aggregate. PropertyType is empty for
// snapshots aggregated across all property types.
type SnapshotKey struct {
	AreaID        int
	Date          string
	OperationType string
	PropertyType  string
}

// SnapshotStore keeps at most one AreaSnapshot per key with replace-if-exists
// semantics. It is the in-memory stand-in for the persistence collaborator:
// recomputing a key fully replaces all derived fields, so re-running a day is
// idempotent. Safe for concurrent use.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[SnapshotKey]models.AreaSnapshot
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[SnapshotKey]models.AreaSnapshot),
	}
}

func keyOf(snap models.AreaSnapshot) SnapshotKey {
	return SnapshotKey{
		AreaID:        snap.AreaID,
		Date:          snap.SnapshotDate,
		OperationType: snap.OperationType,
		PropertyType:  snap.PropertyType,
	}
}

// Upsert inserts the snapshot, replacing any existing row for the same key.
func (s *SnapshotStore) Upsert(snap models.AreaSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[keyOf(snap)] = snap
}

// Get returns the snapshot stored under key.
func (s *SnapshotStore) Get(key SnapshotKey) (models.AreaSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[key]
	return snap, ok
}

// Latest returns the most recent snapshot for an (area, operation type,
// property type) combination.
func (s *SnapshotStore) Latest(areaID int, operationType, propertyType string) (models.AreaSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best models.AreaSnapshot
	found := false
	for key, snap := range s.snapshots {
		if key.AreaID != areaID || key.OperationType != operationType || key.PropertyType != propertyType {
			continue
		}
		if !found || key.Date > best.SnapshotDate {
			best = snap
			found = true
		}
	}
	return best, found
}

// LatestDate returns the most recent snapshot date across the whole store.
func (s *SnapshotStore) LatestDate() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := ""
	for key := range s.snapshots {
		if key.Date > latest {
			latest = key.Date
		}
	}
	return latest, latest != ""
}

// History returns every snapshot for an area ordered by date ascending.
func (s *SnapshotStore) History(areaID int) []models.AreaSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []models.AreaSnapshot
	for key, snap := range s.snapshots {
		if key.AreaID == areaID {
			history = append(history, snap)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		if history[i].SnapshotDate != history[j].SnapshotDate {
			return history[i].SnapshotDate < history[j].SnapshotDate
		}
		return history[i].OperationType < history[j].OperationType
	})
	return history
}

// All returns every stored snapshot in no particular order.
func (s *SnapshotStore) All() []models.AreaSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AreaSnapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	return out
}

// Len returns the number of stored snapshots.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
