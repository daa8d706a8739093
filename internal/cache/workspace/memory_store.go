package workspace

import (
	"context"
	"fmt"
	"sort"
	"sync"

	workspacerepo "spacedesk/internal/gateway/repository/workspace"
	"spacedesk/internal/space"
)

type Store = workspacerepo.Store

// MemoryStore is an in-memory origin/fallback for the workspace store contract.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[string]space.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]space.Snapshot),
	}
}

func (s *MemoryStore) Load(_ context.Context, workspaceID string) (space.Snapshot, bool, error) {
	if s == nil {
		return space.Snapshot{}, false, fmt.Errorf("store is nil")
	}
	wid, err := workspacerepo.RequireWorkspaceID(workspaceID)
	if err != nil {
		return space.Snapshot{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[wid]
	if !ok {
		return space.Snapshot{}, false, nil
	}
	return snap.Clone(), true, nil
}

func (s *MemoryStore) Save(_ context.Context, workspaceID string, snap space.Snapshot) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	wid, err := workspacerepo.RequireWorkspaceID(workspaceID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[wid] = snap.Clone()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.snapshots), nil
}

func sortedKeys(m map[string]space.Snapshot) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
