package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	workspacerepo "spacedesk/internal/gateway/repository/workspace"
	"spacedesk/internal/space"
)

type diskSnapshot struct {
	Workspaces map[string]space.Snapshot `json:"workspaces"`
}

// DiskStore persists workspace snapshots into a local JSON file.
type DiskStore struct {
	path string

	loadOnce sync.Once
	loadErr  error
	mu       sync.Mutex

	snapshots map[string]space.Snapshot
}

func NewDiskStore(path string) *DiskStore {
	return &DiskStore{
		path:      path,
		snapshots: map[string]space.Snapshot{},
	}
}

func (s *DiskStore) Load(_ context.Context, workspaceID string) (space.Snapshot, bool, error) {
	if s == nil {
		return space.Snapshot{}, false, fmt.Errorf("store is nil")
	}
	wid, err := workspacerepo.RequireWorkspaceID(workspaceID)
	if err != nil {
		return space.Snapshot{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return space.Snapshot{}, false, err
	}
	snap, ok := s.snapshots[wid]
	if !ok {
		return space.Snapshot{}, false, nil
	}
	return snap.Clone(), true, nil
}

func (s *DiskStore) Save(_ context.Context, workspaceID string, snap space.Snapshot) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	wid, err := workspacerepo.RequireWorkspaceID(workspaceID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	s.snapshots[wid] = snap.Clone()
	return s.saveLocked()
}

func (s *DiskStore) List(_ context.Context) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	return sortedKeys(s.snapshots), nil
}

// A missing file is an empty store; a corrupt one is reported on every call
// so it is never silently overwritten.
func (s *DiskStore) ensureLoadedLocked() error {
	s.loadOnce.Do(func() {
		raw, err := os.ReadFile(s.path)
		if err != nil {
			if !os.IsNotExist(err) {
				s.loadErr = fmt.Errorf("read %s: %w", s.path, err)
			}
			return
		}
		var snap diskSnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			s.loadErr = fmt.Errorf("decode %s: %w", s.path, err)
			return
		}
		if snap.Workspaces != nil {
			s.snapshots = snap.Workspaces
		}
	})
	return s.loadErr
}

func (s *DiskStore) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(diskSnapshot{Workspaces: s.snapshots}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
