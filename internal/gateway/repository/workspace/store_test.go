package workspace

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"spacedesk/internal/space"
)

func TestRequireWorkspaceID(t *testing.T) {
	if _, err := RequireWorkspaceID("   "); err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected required error, got %v", err)
	}
	id, err := RequireWorkspaceID("  ws-1 ")
	if err != nil || id != "ws-1" {
		t.Fatalf("unexpected id=%q err=%v", id, err)
	}
}

func TestObjectKeyRoundTrip(t *testing.T) {
	key := objectKey(" team ")
	if key != "workspaces/team.json" {
		t.Fatalf("unexpected key %q", key)
	}
	id, ok := workspaceIDFromKey(key)
	if !ok || id != "team" {
		t.Fatalf("unexpected id=%q ok=%v", id, ok)
	}
	for _, bad := range []string{"other/team.json", "workspaces/.json", "workspaces/a/b.json", "workspaces/team.txt"} {
		if _, ok := workspaceIDFromKey(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	cases := []S3Config{
		{},
		{Endpoint: "localhost:9000"},
		{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
	}
	for _, cfg := range cases {
		if _, err := NewS3Store(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
	if _, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("SPACEDESK_TEST_PG_DSN"))
	if dsn == "" {
		t.Skip("SPACEDESK_TEST_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store := NewPostgresStore(db)
	defer store.Close()
	exerciseStore(t, ctx, store)
}

func TestS3StoreRoundTrip(t *testing.T) {
	endpoint := strings.TrimSpace(os.Getenv("SPACEDESK_TEST_S3_ENDPOINT"))
	if endpoint == "" {
		t.Skip("SPACEDESK_TEST_S3_ENDPOINT not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewS3Store(S3Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("SPACEDESK_TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("SPACEDESK_TEST_S3_SECRET_KEY"),
		Bucket:    "spacedesk-test",
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	exerciseStore(t, ctx, store)
}

func exerciseStore(t *testing.T, ctx context.Context, store Store) {
	t.Helper()
	wid := "test-" + uuid.NewString()

	if _, ok, err := store.Load(ctx, wid); err != nil || ok {
		t.Fatalf("load missing: ok=%v err=%v", ok, err)
	}

	s := space.New()
	s.AddSpace()
	s.AddWidget(space.Widget{ID: "w1", Type: "note"})
	if err := store.Save(ctx, wid, s.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.AddChatMessage(space.RoleUser, "again")
	if err := store.Save(ctx, wid, s.Snapshot()); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, ok, err := store.Load(ctx, wid)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Version != s.Version() || got.CurrentSpaceIndex != 1 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if n := len(got.Spaces[1].ChatHistory); n != 1 {
		t.Fatalf("expected 1 chat message, got %d", n)
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, id := range ids {
		if id == wid {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s in %v", wid, ids)
	}
}
