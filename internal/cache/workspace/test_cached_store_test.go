package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"spacedesk/internal/space"
)

type fakeOrigin struct {
	loadCalls int
	saveCalls int
	saveErr   error
	snaps     map[string]space.Snapshot
}

func (f *fakeOrigin) Load(_ context.Context, workspaceID string) (space.Snapshot, bool, error) {
	f.loadCalls++
	snap, ok := f.snaps[workspaceID]
	return snap, ok, nil
}

func (f *fakeOrigin) Save(_ context.Context, workspaceID string, snap space.Snapshot) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.snaps == nil {
		f.snaps = map[string]space.Snapshot{}
	}
	f.snaps[workspaceID] = snap
	return nil
}

func (f *fakeOrigin) List(_ context.Context) ([]string, error) {
	return sortedKeys(f.snaps), nil
}

func TestCachedStore_ReadThroughAndWriteThrough(t *testing.T) {
	origin := &fakeOrigin{snaps: map[string]space.Snapshot{
		"ws1": space.New().Snapshot(),
	}}
	store := NewCachedStore(origin, CacheConfig{TTL: time.Minute, MaxEntries: 8})
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, "ws1"); err != nil || !ok {
		t.Fatalf("load1: ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.Load(ctx, " ws1 "); err != nil || !ok {
		t.Fatalf("load2: ok=%v err=%v", ok, err)
	}
	if origin.loadCalls != 1 {
		t.Fatalf("expected one origin load, got %d", origin.loadCalls)
	}

	s := space.New()
	s.AddSpace()
	if err := store.Save(ctx, "ws1", s.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load(ctx, "ws1")
	if err != nil || !ok {
		t.Fatalf("load3: ok=%v err=%v", ok, err)
	}
	if got.Version != 1 || len(got.Spaces) != 2 {
		t.Fatalf("expected cached saved snapshot, got %+v", got)
	}
	if origin.loadCalls != 1 {
		t.Fatalf("expected cache hit after save, got %d origin loads", origin.loadCalls)
	}
}

func TestCachedStore_MissIsNotCached(t *testing.T) {
	origin := &fakeOrigin{}
	store := NewCachedStore(origin, CacheConfig{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, ok, err := store.Load(ctx, "nope"); err != nil || ok {
			t.Fatalf("load: ok=%v err=%v", ok, err)
		}
	}
	if origin.loadCalls != 2 {
		t.Fatalf("expected misses to reach origin, got %d", origin.loadCalls)
	}
}

func TestCachedStore_FailedSaveDropsEntry(t *testing.T) {
	origin := &fakeOrigin{snaps: map[string]space.Snapshot{"ws1": space.New().Snapshot()}}
	store := NewCachedStore(origin, CacheConfig{TTL: time.Minute, MaxEntries: 8})
	ctx := context.Background()

	if _, _, err := store.Load(ctx, "ws1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	origin.saveErr = errors.New("boom")
	if err := store.Save(ctx, "ws1", space.Snapshot{Version: 9}); err == nil {
		t.Fatalf("expected save error")
	}
	if _, _, err := store.Load(ctx, "ws1"); err != nil {
		t.Fatalf("load after failed save: %v", err)
	}
	if origin.loadCalls != 2 {
		t.Fatalf("expected reload from origin after failed save, got %d", origin.loadCalls)
	}
}

func TestCachedStore_ReturnsCopies(t *testing.T) {
	origin := &fakeOrigin{}
	store := NewCachedStore(origin, CacheConfig{TTL: time.Minute, MaxEntries: 8})
	ctx := context.Background()

	if err := store.Save(ctx, "ws1", space.New().Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _, _ := store.Load(ctx, "ws1")
	got.Spaces[0].ID = "mutated"
	again, _, _ := store.Load(ctx, "ws1")
	if again.Spaces[0].ID != space.DefaultSpaceID {
		t.Fatalf("cached snapshot was mutated through a returned copy")
	}
}
