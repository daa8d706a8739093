package workspace

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	workspacerepo "spacedesk/internal/gateway/repository/workspace"
	"spacedesk/internal/space"
)

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        2 * time.Minute,
		MaxEntries: 2048,
	}
}

// CachedStore is a read-through, write-through cache in front of an origin.
type CachedStore struct {
	origin Store

	snapshots *expirable.LRU[string, space.Snapshot]
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &CachedStore{
		origin:    origin,
		snapshots: expirable.NewLRU[string, space.Snapshot](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (s *CachedStore) Load(ctx context.Context, workspaceID string) (space.Snapshot, bool, error) {
	wid := workspacerepo.NormalizeWorkspaceID(workspaceID)
	if snap, ok := s.snapshots.Get(wid); ok {
		return snap.Clone(), true, nil
	}
	snap, ok, err := s.origin.Load(ctx, wid)
	if err != nil || !ok {
		return snap, ok, err
	}
	s.snapshots.Add(wid, snap.Clone())
	return snap, true, nil
}

func (s *CachedStore) Save(ctx context.Context, workspaceID string, snap space.Snapshot) error {
	wid := workspacerepo.NormalizeWorkspaceID(workspaceID)
	if err := s.origin.Save(ctx, wid, snap); err != nil {
		s.snapshots.Remove(wid)
		return err
	}
	s.snapshots.Add(wid, snap.Clone())
	return nil
}

func (s *CachedStore) List(ctx context.Context) ([]string, error) {
	return s.origin.List(ctx)
}

// Invalidate drops the cached snapshot of one workspace.
func (s *CachedStore) Invalidate(workspaceID string) {
	s.snapshots.Remove(workspacerepo.NormalizeWorkspaceID(workspaceID))
}
